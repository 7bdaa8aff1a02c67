package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// The Optional*Flag helpers let commands run with a bare cobra.Command, as
// tests do, falling back to the default when a flag is not defined.

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, defaultValue bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, defaultValue int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalStringSliceFlag(cmd *cobra.Command, name string) ([]string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return nil, nil
	}
	values, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out, nil
}

// ParseLanguageFilter reads --lang, accepting the usual short aliases.
func ParseLanguageFilter(cmd *cobra.Command) ([]string, error) {
	langs, err := OptionalStringSliceFlag(cmd, "lang")
	if err != nil || len(langs) == 0 {
		return nil, err
	}

	aliases := map[string]string{
		"go":     "go",
		"golang": "go",
		"c":      "cpp",
		"c++":    "cpp",
		"cc":     "cpp",
		"cpp":    "cpp",
		"cxx":    "cpp",
	}

	out := make([]string, 0, len(langs))
	seen := make(map[string]bool, len(langs))
	for _, lang := range langs {
		key := strings.ToLower(lang)
		canonical, ok := aliases[key]
		if !ok {
			return nil, fmt.Errorf("unsupported language %q (supported: go, cpp)", lang)
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return out, nil
}

// ParseOutputFormat reads --format, returning "" when it is not set.
func ParseOutputFormat(cmd *cobra.Command) (string, error) {
	value, err := OptionalStringFlag(cmd, "format")
	if err != nil || value == "" {
		return "", err
	}
	switch value = strings.ToLower(value); value {
	case "site", "file", "json":
		return value, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: site, file, json)", value)
	}
}
