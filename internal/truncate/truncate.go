package truncate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosuri/uiprogress"

	"github.com/dbsmedya/fkorder/internal/config"
	"github.com/dbsmedya/fkorder/internal/graph"
	"github.com/dbsmedya/fkorder/internal/lock"
	"github.com/dbsmedya/fkorder/internal/logger"
)

// ProtectedTableError is returned when a set contains tables listed in
// truncate.protected_tables.
type ProtectedTableError struct {
	Tables []string
}

func (e *ProtectedTableError) Error() string {
	return fmt.Sprintf("refusing to truncate protected table(s): %s", strings.Join(e.Tables, ", "))
}

// Conn is the part of *sql.Conn the truncater needs. Session settings and
// advisory locks only hold on a pinned connection.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options controls a truncation.
type Options struct {
	SetName  string // also names the advisory lock
	DryRun   bool
	Progress io.Writer // progress bar output, nil disables the bar
}

// Stats summarizes a truncation.
type Stats struct {
	Groups     int
	Tables     int
	Statements []string
	Duration   time.Duration
	DryRun     bool
}

// Truncater empties table sets in delete order.
type Truncater struct {
	conn   Conn
	driver string
	cfg    config.TruncateConfig
	log    *logger.Logger
	out    io.Writer
}

// New creates a truncater executing on conn. Dry-run statements are
// written to out.
func New(conn Conn, driver string, cfg config.TruncateConfig, out io.Writer, log *logger.Logger) *Truncater {
	if log == nil {
		log = logger.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Truncater{
		conn:   conn,
		driver: config.NormalizeDriver(driver),
		cfg:    cfg,
		log:    log,
		out:    out,
	}
}

// CheckProtected returns a *ProtectedTableError if result contains a
// protected table.
func (t *Truncater) CheckProtected(result *graph.Result) error {
	var protected []string
	for _, gr := range result.Groups {
		for _, table := range gr.Tables {
			if t.cfg.IsProtected(table) {
				protected = append(protected, table)
			}
		}
	}
	if len(protected) > 0 {
		return &ProtectedTableError{Tables: protected}
	}
	return nil
}

// Run empties every table of result. The groups are processed in delete
// order so no statement removes rows that are still referenced.
func (t *Truncater) Run(ctx context.Context, result *graph.Result, opts Options) (*Stats, error) {
	start := time.Now()

	if err := t.CheckProtected(result); err != nil {
		return nil, err
	}

	groups := result.InOrder(graph.OrderDelete)
	plan, err := BuildPlan(t.driver, result, t.cfg.MaxTablesPerStatement)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Groups:     len(groups),
		Tables:     plan.TableCount(),
		Statements: plan.Statements(),
		DryRun:     opts.DryRun,
	}

	log := t.log
	if opts.SetName != "" {
		log = log.WithSet(opts.SetName)
	}

	if opts.DryRun {
		for _, stmt := range stats.Statements {
			fmt.Fprintf(t.out, "%s;\n", stmt)
		}
		stats.Duration = time.Since(start)
		log.Infof("Dry run: %d statement(s) for %d table(s) not executed", len(stats.Statements), stats.Tables)
		return stats, nil
	}

	run := func() error { return t.execute(ctx, plan, opts.Progress, log) }

	l, err := lock.NewSetLock(t.conn, t.driver, lockSetName(opts.SetName, groups))
	switch {
	case errors.Is(err, lock.ErrUnsupportedDriver):
		log.Warnf("No advisory lock for driver %s, truncating without lock", t.driver)
		err = run()
	case err != nil:
		return nil, err
	default:
		log.Debugf("Acquiring advisory lock %q", l.LockName())
		err = l.WithLock(ctx, t.cfg.LockTimeout, run)
	}
	if err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	log.Infof("Truncated %d table(s) in %d group(s), duration: %s", stats.Tables, stats.Groups, stats.Duration)
	return stats, nil
}

func (t *Truncater) execute(ctx context.Context, plan *Plan, progress io.Writer, log *logger.Logger) (err error) {
	for _, stmt := range plan.Setup {
		if _, err := t.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare session: %w", err)
		}
	}
	defer func() {
		// Session settings must be restored even when ctx was cancelled.
		restoreCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, stmt := range plan.Teardown {
			if _, rerr := t.conn.ExecContext(restoreCtx, stmt); rerr != nil && err == nil {
				err = fmt.Errorf("failed to restore session: %w", rerr)
			}
		}
	}()

	var bar *uiprogress.Bar
	if progress != nil && len(plan.Steps) > 0 {
		p := uiprogress.New()
		p.SetOut(progress)
		p.Start()
		defer p.Stop()

		bar = p.AddBar(len(plan.Steps)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Truncating: "
		})
	}

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("truncate interrupted: %w", err)
		}

		if _, err := t.conn.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", strings.Join(step.Tables, ", "), err)
		}
		log.WithGroup(step.Group).Debugw("truncated", "tables", step.Tables, "sql", step.SQL)

		if bar != nil {
			bar.Incr()
		}
	}
	return nil
}

// lockSetName names the lock after the set. An ad-hoc table list gets a
// name-based UUID of its tables, which keeps MySQL lock names under 64
// characters.
func lockSetName(setName string, groups []graph.Group) string {
	if setName != "" {
		return setName
	}
	var tables []string
	for _, gr := range groups {
		tables = append(tables, gr.Tables...)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(tables, ","))).String()
}
