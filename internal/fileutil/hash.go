package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// HashFile returns a short content hash of path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// HashTree returns one short hash over the named files of dir, independent of
// the order names are given in.
func HashTree(dir string, names []string) (string, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, name := range sorted {
		fileHash, err := HashFile(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		io.WriteString(h, name)
		io.WriteString(h, "\x00")
		io.WriteString(h, fileHash)
		io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
