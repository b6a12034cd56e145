package database

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/fkorder/internal/config"
)

func TestBuildDSN_MySQL(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.DatabaseConfig
		addr string
		tls  string
	}{
		{
			name: "basic DSN",
			cfg:  &config.DatabaseConfig{Driver: "mysql", Host: "localhost", Port: 3306, User: "root", Password: "secret", Database: "testdb", TLS: "preferred"},
			addr: "localhost:3306",
			tls:  "preferred",
		},
		{
			name: "default port and TLS disabled",
			cfg:  &config.DatabaseConfig{Driver: "mysql", Host: "db", User: "root", Password: "p@ss!w0rd#123", Database: "testdb", TLS: "disable"},
			addr: "db:3306",
			tls:  "false",
		},
		{
			name: "IPv6 host",
			cfg:  &config.DatabaseConfig{Driver: "mariadb", Host: "::1", Port: 3307, User: "root", Password: "secret", Database: "testdb", TLS: "required"},
			addr: "[::1]:3307",
			tls:  "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := BuildDSN(tt.cfg)
			require.NoError(t, err)

			parsed, err := mysql.ParseDSN(dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.User, parsed.User)
			assert.Equal(t, tt.cfg.Password, parsed.Passwd)
			assert.Equal(t, tt.addr, parsed.Addr)
			assert.Equal(t, tt.cfg.Database, parsed.DBName)
			assert.Equal(t, tt.tls, parsed.TLSConfig)
			assert.True(t, parsed.ParseTime)
		})
	}
}

func TestBuildDSN_Postgres(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "postgres", Host: "localhost", User: "gitlab", Password: "p@ss/word", Database: "gitlabhq_development", TLS: "disable"}

	dsn, err := BuildDSN(cfg)
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/gitlabhq_development", u.Path)
	assert.Equal(t, "gitlab", u.User.Username())
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestBuildDSN_SQLServer(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "mssql", Host: "sql01", User: "sa", Password: "secret", Database: "shop", TLS: "required"}

	dsn, err := BuildDSN(cfg)
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "sql01:1433", u.Host)
	assert.Equal(t, "shop", u.Query().Get("database"))
	assert.Equal(t, "true", u.Query().Get("encrypt"))
}

func TestBuildDSN_Oracle(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "oracle", Host: "ora01", User: "app", Password: "secret", Database: "ORCLPDB1"}

	dsn, err := BuildDSN(cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "oracle://"), dsn)
	assert.Contains(t, dsn, "ora01:1521")
	assert.Contains(t, dsn, "ORCLPDB1")
}

func TestBuildDSN_UnsupportedDriver(t *testing.T) {
	_, err := BuildDSN(&config.DatabaseConfig{Driver: "sqlite"})
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestDriverName(t *testing.T) {
	tests := map[string]string{
		"mysql":      "mysql",
		"postgres":   "pgx",
		"postgresql": "pgx",
		"sqlserver":  "sqlserver",
		"oracle":     "oracle",
	}
	for driver, expected := range tests {
		name, err := DriverName(driver)
		require.NoError(t, err)
		assert.Equal(t, expected, name, driver)
	}
}

func TestNewManager(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "pg", Host: "localhost"}
	manager := NewManager(cfg)

	require.NotNil(t, manager)
	assert.Same(t, cfg, manager.config)
	assert.Nil(t, manager.DB, "DB should be nil before Connect()")
	assert.Equal(t, "postgres", manager.Driver())
	assert.NoError(t, manager.Close(), "Close() on unconnected manager")
	assert.Error(t, manager.Ping(context.Background()))

	_, err := manager.Conn(context.Background())
	assert.Error(t, err)
}

// stubOpen makes connect use newDB for every attempt and records the
// driver and DSN it was called with.
func stubOpen(t *testing.T, newDB func() *sql.DB) (driver, dsn *string) {
	t.Helper()
	var gotDriver, gotDSN string
	old := openDB
	openDB = func(d, s string) (*sql.DB, error) {
		gotDriver, gotDSN = d, s
		return newDB(), nil
	}
	oldBackoff := initialBackoff
	initialBackoff = time.Millisecond
	t.Cleanup(func() {
		openDB = old
		initialBackoff = oldBackoff
	})
	return &gotDriver, &gotDSN
}

func TestManager_Connect(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()

	driver, dsn := stubOpen(t, func() *sql.DB { return db })
	manager := NewManager(&config.DatabaseConfig{Driver: "postgres", DSN: "postgres://u:p@h/db"})

	require.NoError(t, manager.Connect(context.Background()))
	assert.Equal(t, "pgx", *driver)
	assert.Equal(t, "postgres://u:p@h/db", *dsn, "an explicit DSN is used verbatim")
	assert.NotNil(t, manager.DB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_ConnectRetriesPing(t *testing.T) {
	pingErr := errors.New("connection refused")
	attempts := 0
	stubOpen(t, func() *sql.DB {
		attempts++
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		mock.ExpectPing().WillReturnError(pingErr)
		return db
	})
	manager := NewManager(&config.DatabaseConfig{Driver: "mysql", Host: "localhost", User: "root", Database: "app"})

	err := manager.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, maxRetries, attempts)
	assert.True(t, errors.Is(err, pingErr))
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.Nil(t, manager.DB)
}

func TestManager_ConnectCanceled(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("refused"))

	stubOpen(t, func() *sql.DB { return db })
	initialBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = NewManager(&config.DatabaseConfig{Driver: "mysql", DSN: "x"}).Connect(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
