package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/fkorder/internal/config"
	"github.com/dbsmedya/fkorder/internal/database"
	"github.com/dbsmedya/fkorder/internal/logger"
	"github.com/dbsmedya/fkorder/internal/schema"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

// useColor reports whether text output should be colored.
func useColor() bool {
	if noColor {
		return false
	}
	f, ok := outputWriter.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// loadConfig loads the config file and applies the CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.Driver, overrides.DSN)
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

// connect opens the configured database. The caller closes the manager.
func connect(ctx context.Context, cfg *config.Config) (*database.Manager, error) {
	dbManager := database.NewManager(&cfg.Database)
	if err := dbManager.Connect(ctx); err != nil {
		return nil, err
	}
	return dbManager, nil
}

// newSQLSource creates a foreign key source reading the catalog of the
// connected database.
func newSQLSource(dbManager *database.Manager) (*schema.SQLSource, error) {
	dialect, err := schema.NewDialect(dbManager.Driver())
	if err != nil {
		return nil, err
	}
	return schema.NewSQLSource(dbManager.DB, dialect)
}

// commandContext returns the context of cmd, or a background context when
// the command is run directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
