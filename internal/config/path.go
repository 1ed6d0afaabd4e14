// Package config loads application configuration from viper and expands paths.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "cardscan"

// Dir returns the directory searched for config.yaml: $XDG_CONFIG_HOME/cardscan
// when set, else ~/.config/cardscan.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// defaultDatabasePath is $XDG_DATA_HOME/cardscan/cardscan.db, falling back
// to ~/.local/share.
func defaultDatabasePath() string {
	base := "~/.local/share"
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		base = xdg
	}
	return filepath.Join(base, appName, appName+".db")
}

// ExpandPath resolves a leading ~ to the home directory and substitutes
// $VAR references. Paths are returned unchanged when the home directory is
// unknown.
func ExpandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/' || rest[0] == filepath.Separator) {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + rest
		}
	}
	return os.ExpandEnv(path)
}
