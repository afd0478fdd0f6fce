package types

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds the connection and run parameters consumed by the store
// adapter and the CLI. It is built once by the CLI and passed explicitly to
// every component that needs it.
type Config struct {
	Driver     string `json:"driver" yaml:"driver" mapstructure:"driver"`
	Host       string `json:"host" yaml:"host" mapstructure:"host"`
	Port       int    `json:"port" yaml:"port" mapstructure:"port"`
	User       string `json:"user" yaml:"user" mapstructure:"user"`
	Password   string `json:"password" yaml:"password" mapstructure:"password"`
	Database   string `json:"database" yaml:"database" mapstructure:"database"`
	Prefix     string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	DSN        string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
	SeedScript string `json:"seed_script" yaml:"seed_script" mapstructure:"seed_script"`
	LogLevel   string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogFile    string `json:"log_file,omitempty" yaml:"log_file,omitempty" mapstructure:"log_file"`
}

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Defaults applied by the CLI when a key is absent from every source.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 3306
	DefaultPrefix     = "jos_"
	DefaultSeedScript = "sql/assets.sql"
	DefaultLogLevel   = "info"
)

// Config validation errors.
var (
	ErrDriverEmpty     = errors.New("driver must not be empty")
	ErrDriverUnknown   = errors.New("unknown driver")
	ErrDatabaseEmpty   = errors.New("database name must not be empty")
	ErrUserEmpty       = errors.New("database user must not be empty")
	ErrDSNEmpty        = errors.New("sqlite dsn must not be empty")
	ErrPrefixMalformed = errors.New("table prefix must not contain the #__ placeholder")
)

var knownDrivers = map[string]bool{
	DriverMySQL:  true,
	DriverSQLite: true,
}

// Validate checks that the Config is well-formed for its driver. It returns a
// sentinel error from this package on failure.
func (c Config) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return fmt.Errorf("%w: %q", ErrDriverUnknown, c.Driver)
	}
	if strings.Contains(c.Prefix, TablePrefixPlaceholder) {
		return ErrPrefixMalformed
	}

	switch c.Driver {
	case DriverMySQL:
		if c.Database == "" {
			return ErrDatabaseEmpty
		}
		if c.User == "" {
			return ErrUserEmpty
		}
	case DriverSQLite:
		if c.DSN == "" {
			return ErrDSNEmpty
		}
	}
	return nil
}
