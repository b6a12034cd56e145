package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected default driver %q, got %q", DriverPostgres, cfg.Database.Driver)
	}
	if cfg.Database.TLS != "preferred" {
		t.Errorf("expected TLS 'preferred', got %s", cfg.Database.TLS)
	}
	if cfg.Database.MaxConnections != 5 {
		t.Errorf("expected max_connections 5, got %d", cfg.Database.MaxConnections)
	}

	if cfg.Partitions.DynamicSchema != DefaultDynamicPartitionSchema {
		t.Errorf("expected dynamic schema %q, got %q", DefaultDynamicPartitionSchema, cfg.Partitions.DynamicSchema)
	}

	if cfg.Truncate.LockTimeout != 1 {
		t.Errorf("expected lock_timeout 1, got %d", cfg.Truncate.LockTimeout)
	}

	if cfg.Server.Listen != ":8080" {
		t.Errorf("expected listen ':8080', got %s", cfg.Server.Listen)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logging output 'stderr', got %s", cfg.Logging.Output)
	}
}

func TestDefaultPort(t *testing.T) {
	tests := []struct {
		driver string
		want   int
	}{
		{DriverMySQL, 3306},
		{DriverPostgres, 5432},
		{DriverSQLServer, 1433},
		{DriverOracle, 1521},
		{"", 3306},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			if got := DefaultPort(tt.driver); got != tt.want {
				t.Errorf("DefaultPort(%q) = %d, want %d", tt.driver, got, tt.want)
			}
		})
	}
}

func TestEffectivePort(t *testing.T) {
	db := DatabaseConfig{Driver: DriverPostgres}
	if got := db.EffectivePort(); got != 5432 {
		t.Errorf("expected driver default 5432, got %d", got)
	}

	db.Port = 6543
	if got := db.EffectivePort(); got != 6543 {
		t.Errorf("expected explicit port 6543, got %d", got)
	}
}

func TestIsProtected(t *testing.T) {
	tc := TruncateConfig{ProtectedTables: []string{"schema_migrations", "users"}}

	if !tc.IsProtected("users") {
		t.Error("expected users to be protected")
	}
	if tc.IsProtected("posts") {
		t.Error("expected posts not to be protected")
	}
}
