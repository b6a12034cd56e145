// Package lock provides session-level advisory locks for MySQL and PostgreSQL.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dbsmedya/fkorder/internal/config"
)

// ErrLockTimeout is returned when lock acquisition times out because
// another instance is holding the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// ErrUnsupportedDriver is returned for drivers without advisory locks.
var ErrUnsupportedDriver = errors.New("advisory locks are not supported for this driver")

// Common timeout values for lock acquisition (in seconds).
const (
	// TimeoutImmediate returns immediately if lock cannot be acquired (no wait).
	TimeoutImmediate = 0

	// TimeoutShort is suitable for fast-failing duplicate run detection.
	TimeoutShort = 1

	// TimeoutInfinite waits indefinitely until the lock is acquired.
	TimeoutInfinite = -1
)

// pollInterval is how often PostgreSQL retries pg_try_advisory_lock while
// waiting for a timeout.
var pollInterval = 100 * time.Millisecond

// Conn is the part of *sql.Conn the lock needs. Advisory locks belong to a
// database session, so the same connection must be used for acquire and
// release.
type Conn interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AdvisoryLock represents a named advisory lock held by one session.
//
// MySQL uses GET_LOCK()/RELEASE_LOCK(). PostgreSQL uses
// pg_try_advisory_lock(hashtext(name)), so distinct names can collide on
// the same 32-bit key.
type AdvisoryLock struct {
	conn     Conn
	driver   string
	lockName string
	held     bool
}

// NewAdvisoryLock creates a new advisory lock with the given name.
// The lock is not acquired until AcquireLock is called.
func NewAdvisoryLock(conn Conn, driver, lockName string) (*AdvisoryLock, error) {
	driver = config.NormalizeDriver(driver)
	switch driver {
	case config.DriverMySQL, config.DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	return &AdvisoryLock{
		conn:     conn,
		driver:   driver,
		lockName: lockName,
	}, nil
}

// AcquireLock attempts to acquire the advisory lock with the specified
// timeout in seconds. Returns true if the lock was acquired, false if the
// timeout was reached. A negative timeout waits forever.
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.held {
		return true, nil
	}

	var acquired bool
	var err error
	if a.driver == config.DriverMySQL {
		acquired, err = a.acquireMySQL(ctx, timeoutSeconds)
	} else {
		acquired, err = a.acquirePostgres(ctx, timeoutSeconds)
	}
	if err != nil {
		return false, err
	}
	a.held = acquired
	return acquired, nil
}

// acquireMySQL runs GET_LOCK, which returns 1 when obtained, 0 on timeout
// and NULL on error.
func (a *AdvisoryLock) acquireMySQL(ctx context.Context, timeoutSeconds int) (bool, error) {
	var result sql.NullInt64
	err := a.conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

func (a *AdvisoryLock) acquirePostgres(ctx context.Context, timeoutSeconds int) (bool, error) {
	if timeoutSeconds < 0 {
		var one int
		err := a.conn.QueryRowContext(ctx, "SELECT 1 FROM pg_advisory_lock(hashtext($1))", a.lockName).Scan(&one)
		if err != nil {
			return false, fmt.Errorf("failed to execute pg_advisory_lock: %w", err)
		}
		return true, nil
	}

	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	for {
		acquired, err := a.tryPostgres(ctx)
		if err != nil || acquired {
			return acquired, err
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (a *AdvisoryLock) tryPostgres(ctx context.Context) (bool, error) {
	var result sql.NullBool
	err := a.conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", a.lockName).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute pg_try_advisory_lock: %w", err)
	}
	return result.Valid && result.Bool, nil
}

// ReleaseLock releases the advisory lock.
// Returns true if the lock was released, false if this session did not
// hold it. Locks are also released when the session ends.
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil
	}

	if a.driver == config.DriverPostgres {
		var result sql.NullBool
		err := a.conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock(hashtext($1))", a.lockName).Scan(&result)
		if err != nil {
			return false, fmt.Errorf("failed to execute pg_advisory_unlock: %w", err)
		}
		a.held = false
		return result.Valid && result.Bool, nil
	}

	var result sql.NullInt64
	err := a.conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}

	// NULL means the named lock did not exist.
	a.held = false
	if !result.Valid {
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q (lock did not exist)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected RELEASE_LOCK return value: %d", result.Int64)
	}
}

// IsHeld returns true if this lock is currently held by this instance.
func (a *AdvisoryLock) IsHeld() bool {
	return a.held
}

// LockName returns the name of the advisory lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// AcquireOrFail acquires the lock with TimeoutShort.
// Returns ErrLockTimeout if another instance is holding the lock.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.AcquireLock(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}
	return nil
}

// GenerateSetLockName creates a consistent lock name for a table set.
// Characters outside [A-Za-z0-9_-] are replaced with underscores.
//
// Example: GenerateSetLockName("ci builds") -> "fkorder:set:ci_builds"
func GenerateSetLockName(setName string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, setName)

	return fmt.Sprintf("fkorder:set:%s", sanitized)
}

// NewSetLock creates an advisory lock for a table set.
func NewSetLock(conn Conn, driver, setName string) (*AdvisoryLock, error) {
	return NewAdvisoryLock(conn, driver, GenerateSetLockName(setName))
}

// WithLock executes fn while holding the lock and releases it afterwards,
// also when fn panics.
//
// Example:
//
//	l, _ := lock.NewSetLock(conn, "postgres", "legacy_ci")
//	err := l.WithLock(ctx, lock.TimeoutShort, func() error {
//	    return truncateSet()
//	})
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	acquired, err := a.AcquireLock(ctx, timeoutSeconds)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}

	defer func() {
		// Released with a fresh context so cancellation of ctx does not
		// leave the lock behind; it is dropped with the session anyway.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = a.ReleaseLock(releaseCtx)
	}()

	return fn()
}
