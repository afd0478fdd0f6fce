package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty driver returns ErrDriverEmpty",
			config:  Config{Driver: ""},
			wantErr: ErrDriverEmpty,
		},
		{
			name:    "unknown driver returns ErrDriverUnknown",
			config:  Config{Driver: "postgres", Database: "cms", User: "root"},
			wantErr: ErrDriverUnknown,
		},
		{
			name:    "prefix carrying the placeholder is rejected",
			config:  Config{Driver: DriverMySQL, Database: "cms", User: "root", Prefix: "#__"},
			wantErr: ErrPrefixMalformed,
		},
		{
			name:    "mysql without database returns ErrDatabaseEmpty",
			config:  Config{Driver: DriverMySQL, User: "root"},
			wantErr: ErrDatabaseEmpty,
		},
		{
			name:    "mysql without user returns ErrUserEmpty",
			config:  Config{Driver: DriverMySQL, Database: "cms"},
			wantErr: ErrUserEmpty,
		},
		{
			name:    "valid mysql config",
			config:  Config{Driver: DriverMySQL, Host: "localhost", Port: 3306, Database: "cms", User: "root", Prefix: "jos_"},
			wantErr: nil,
		},
		{
			name:    "sqlite without dsn returns ErrDSNEmpty",
			config:  Config{Driver: DriverSQLite},
			wantErr: ErrDSNEmpty,
		},
		{
			name:    "valid sqlite config with empty prefix",
			config:  Config{Driver: DriverSQLite, DSN: "/tmp/cms.db"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBackupTableName(t *testing.T) {
	if got := BackupTableName(AssetsTable); got != "#__assets_backup" {
		t.Fatalf("BackupTableName(%q) = %q", AssetsTable, got)
	}
}
