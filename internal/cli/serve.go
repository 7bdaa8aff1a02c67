package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/doxsearch/internal/logger"
	"github.com/skelly-dev/doxsearch/internal/server"
)

// RunServe loads the index once and serves it until SIGINT or SIGTERM.
// SIGHUP reloads the index from disk.
func RunServe(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return err
	}

	port, err := OptionalIntFlag(cmd, "port", 0)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	indexPath, err := OptionalStringFlag(cmd, "index")
	if err != nil {
		return err
	}
	if indexPath == "" {
		indexPath = cfg.Server.Index
	}
	if indexPath == "" {
		indexPath = cfg.Output.Dir
	}
	indexPath = resolveAgainst(rootPath, indexPath)

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.WithComponent("serve")
	srv, err := server.New(ctx, cfg.Server, server.FileLoader(indexPath))
	if err != nil {
		return err
	}
	log.Info("index loaded", "path", indexPath)

	go reloadOnHangup(ctx, srv)
	return srv.Run(ctx)
}

func reloadOnHangup(ctx context.Context, srv *server.Server) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	log := logger.WithComponent("serve")
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := srv.Reload(ctx); err != nil {
				log.Error("reload failed, keeping previous index", "error", err)
			}
		}
	}
}
