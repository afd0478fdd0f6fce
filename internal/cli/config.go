package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/assetfix/internal/paths"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Config keys. Flags use the same names with dashes.
const (
	cfgKeyDriver     = "driver"
	cfgKeyHost       = "host"
	cfgKeyPort       = "port"
	cfgKeyUser       = "user"
	cfgKeyPassword   = "password"
	cfgKeyDatabase   = "database"
	cfgKeyPrefix     = "prefix"
	cfgKeyDSN        = "dsn"
	cfgKeySeedScript = "seed_script"
	cfgKeyLogLevel   = "log_level"
	cfgKeyLogFile    = "log_file"

	envPrefix = "ASSETFIX"
)

var configDefaults = map[string]any{
	cfgKeyDriver:     types.DriverMySQL,
	cfgKeyHost:       types.DefaultHost,
	cfgKeyPort:       types.DefaultPort,
	cfgKeyUser:       "",
	cfgKeyPassword:   "",
	cfgKeyDatabase:   "",
	cfgKeyPrefix:     types.DefaultPrefix,
	cfgKeyDSN:        "",
	cfgKeySeedScript: types.DefaultSeedScript,
	cfgKeyLogLevel:   types.DefaultLogLevel,
	cfgKeyLogFile:    "",
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func (a *app) registerFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: $(CWD)/assetfix.yaml)")
	pf.String(flagName(cfgKeyDriver), "", "database driver: mysql or sqlite")
	pf.String(flagName(cfgKeyHost), "", "MySQL host")
	pf.Int(flagName(cfgKeyPort), 0, "MySQL port")
	pf.String(flagName(cfgKeyUser), "", "MySQL user")
	pf.String(flagName(cfgKeyPassword), "", "MySQL password")
	pf.String(flagName(cfgKeyDatabase), "", "MySQL database name")
	pf.String(flagName(cfgKeyPrefix), "", "table prefix replacing #__")
	pf.String(flagName(cfgKeyDSN), "", "SQLite database file")
	pf.String(flagName(cfgKeySeedScript), "", "seed script path")
	pf.String(flagName(cfgKeyLogLevel), "", "log level: trace, debug, info, warn, error")
	pf.String(flagName(cfgKeyLogFile), "", "also append log entries to this file")

	bindFlags(a.v, pf)
}

// bindFlags binds every config key to its flag. Viper only lets a flag
// override other sources when it was set on the command line.
func bindFlags(v *viper.Viper, pf *pflag.FlagSet) {
	for key := range configDefaults {
		_ = v.BindPFlag(key, pf.Lookup(flagName(key)))
	}
}

// loadConfig merges defaults, the config file, ASSETFIX_* environment
// variables and flags, in increasing precedence, and validates the result.
func (a *app) loadConfig() (types.Config, error) {
	var cfg types.Config
	v := a.v

	for key, val := range configDefaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path, ok, err := paths.FindConfigFile(a.configFile)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", errConfig, err)
	}
	if ok {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("%w: read %s: %w", errConfig, path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", errConfig, err)
	}
	if cfg.SeedScript, err = paths.ResolveSeedScript(cfg.SeedScript); err != nil {
		return cfg, fmt.Errorf("%w: %w", errConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %w", errConfig, err)
	}
	return cfg, nil
}

// configFileUsed returns the file viper read, or "" when none was read.
func configFileUsed(v *viper.Viper) string {
	return v.ConfigFileUsed()
}
