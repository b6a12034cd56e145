// Package database provides connection management for the introspected database.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	go_ora "github.com/sijms/go-ora/v2"

	"github.com/dbsmedya/fkorder/internal/config"
)

// openDB is replaced in tests.
var openDB = sql.Open

// Retry settings for the initial connection.
var (
	maxRetries     = 3
	initialBackoff = time.Second
)

// Manager owns the connection pool to the configured database.
type Manager struct {
	DB     *sql.DB
	config *config.DatabaseConfig
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.DatabaseConfig) *Manager {
	return &Manager{
		config: cfg,
	}
}

// Driver returns the canonical driver name of the configured database.
func (m *Manager) Driver() string {
	return config.NormalizeDriver(m.config.Driver)
}

// Connect opens the pool and verifies it with a ping.
func (m *Manager) Connect(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", m.Driver(), err)
	}
	m.DB = db
	return nil
}

// Conn returns a single pinned connection from the pool. Session state
// such as advisory locks and MySQL session variables lives on it.
func (m *Manager) Conn(ctx context.Context) (*sql.Conn, error) {
	if m.DB == nil {
		return nil, fmt.Errorf("database is not connected")
	}
	return m.DB.Conn(ctx)
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var db *sql.DB
	var err error

	backoff := initialBackoff

	for i := 0; i < maxRetries; i++ {
		db, err = m.connect()
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

// connect creates a database connection pool.
func (m *Manager) connect() (*sql.DB, error) {
	driverName, err := DriverName(m.config.Driver)
	if err != nil {
		return nil, err
	}

	dsn := m.config.DSN
	if dsn == "" {
		if dsn, err = BuildDSN(m.config); err != nil {
			return nil, err
		}
	}

	db, err := openDB(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if m.config.MaxConnections > 0 {
		db.SetMaxOpenConns(m.config.MaxConnections)
	}
	if m.config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(m.config.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// DriverName returns the database/sql driver name registered for driver.
func DriverName(driver string) (string, error) {
	switch config.NormalizeDriver(driver) {
	case config.DriverMySQL:
		return "mysql", nil
	case config.DriverPostgres:
		return "pgx", nil
	case config.DriverSQLServer:
		return "sqlserver", nil
	case config.DriverOracle:
		return "oracle", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// BuildDSN constructs a driver-specific DSN from the discrete connection
// fields.
func BuildDSN(cfg *config.DatabaseConfig) (string, error) {
	switch config.NormalizeDriver(cfg.Driver) {
	case config.DriverMySQL:
		return buildMySQLDSN(cfg), nil
	case config.DriverPostgres:
		return buildPostgresDSN(cfg), nil
	case config.DriverSQLServer:
		return buildSQLServerDSN(cfg), nil
	case config.DriverOracle:
		return buildOracleDSN(cfg), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func hostPort(cfg *config.DatabaseConfig) string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.EffectivePort()))
}

// buildMySQLDSN formats user:password@tcp(host:port)/database?params.
func buildMySQLDSN(cfg *config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = hostPort(cfg)
	mc.DBName = cfg.Database
	mc.ParseTime = true

	switch cfg.TLS {
	case "disable":
		mc.TLSConfig = "false"
	case "required":
		mc.TLSConfig = "true"
	default:
		mc.TLSConfig = "preferred"
	}

	return mc.FormatDSN()
}

// buildPostgresDSN formats a postgres:// URL understood by pgx.
func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	q := url.Values{}
	switch cfg.TLS {
	case "disable":
		q.Set("sslmode", "disable")
	case "required":
		q.Set("sslmode", "require")
	default:
		q.Set("sslmode", "prefer")
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     hostPort(cfg),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// buildSQLServerDSN formats a sqlserver:// URL understood by go-mssqldb.
func buildSQLServerDSN(cfg *config.DatabaseConfig) string {
	q := url.Values{}
	q.Set("database", cfg.Database)
	switch cfg.TLS {
	case "disable":
		q.Set("encrypt", "disable")
	case "required":
		q.Set("encrypt", "true")
	default:
		q.Set("encrypt", "false")
	}

	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     hostPort(cfg),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// buildOracleDSN formats an oracle:// URL with go-ora. The database field
// holds the service name.
func buildOracleDSN(cfg *config.DatabaseConfig) string {
	options := map[string]string{}
	if cfg.TLS == "required" {
		options["SSL"] = "true"
	}
	return go_ora.BuildUrl(cfg.Host, cfg.EffectivePort(), cfg.Database, cfg.User, cfg.Password, options)
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("%s close: %w", m.Driver(), err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("database is not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", m.Driver(), err)
	}
	return nil
}
