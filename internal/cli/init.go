package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/assetfix/internal/paths"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default assetfix.yaml",
		Long: "Write a configuration file with default values to the --config path,\n" +
			"$ASSETFIX_CONFIG or ./assetfix.yaml. An existing file is left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := paths.ResolveConfigFile(a.configFile)
			if err != nil {
				return fmt.Errorf("%w: %w", errConfig, err)
			}
			written, err := writeConfigIfMissing(path)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	}
}

// defaultConfig is the content of a freshly initialized assetfix.yaml.
func defaultConfig() types.Config {
	return types.Config{
		Driver:     types.DriverMySQL,
		Host:       types.DefaultHost,
		Port:       types.DefaultPort,
		User:       "root",
		Database:   "joomla",
		Prefix:     types.DefaultPrefix,
		SeedScript: types.DefaultSeedScript,
		LogLevel:   types.DefaultLogLevel,
	}
}

// writeConfigIfMissing creates the config file with default values if it
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	cfg := defaultConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	header := []byte("# assetfix configuration. ASSETFIX_* environment variables and flags override these values.\n")
	return true, os.WriteFile(path, append(header, data...), 0o600)
}
