// Package paths resolves the configuration file and seed script locations.
package paths

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// Default file names, relative to the working directory.
const (
	DefaultConfigFileName = "assetfix.yaml"
	DefaultSeedScript     = "sql/assets.sql"
	appDirName            = "assetfix"
)

// EnvConfigFile overrides the configuration file location.
const EnvConfigFile = "ASSETFIX_CONFIG"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/assetfix (fallback ~/.config/assetfix)
// macOS:   ~/Library/Application Support/assetfix
// Windows: %APPDATA%/assetfix
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// ResolveConfigFile returns the configuration file path following the
// precedence chain: flag > ASSETFIX_CONFIG env > $(CWD)/assetfix.yaml.
// The file need not exist; this is also where init writes.
func ResolveConfigFile(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return filepath.Abs(env)
	}
	return filepath.Abs(DefaultConfigFileName)
}

// FindConfigFile returns the configuration file to read. An explicit flag or
// env value is returned as is, so a missing file surfaces as a read error.
// Otherwise $(CWD)/assetfix.yaml is tried, then the same name in
// DefaultConfigDir(). ok is false when no file was found.
func FindConfigFile(flag string) (path string, ok bool, err error) {
	if flag != "" || os.Getenv(EnvConfigFile) != "" {
		path, err = ResolveConfigFile(flag)
		return path, err == nil, err
	}

	candidates := []string{DefaultConfigFileName}
	if dir, err := DefaultConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, DefaultConfigFileName))
	}
	for _, c := range candidates {
		_, err := os.Stat(c)
		if err == nil {
			abs, err := filepath.Abs(c)
			return abs, err == nil, err
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, err
		}
	}
	return "", false, nil
}

// ResolveSeedScript returns the absolute seed script path. An empty value
// selects $(CWD)/sql/assets.sql.
func ResolveSeedScript(configured string) (string, error) {
	if configured == "" {
		configured = DefaultSeedScript
	}
	return filepath.Abs(configured)
}
