package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/fkorder/internal/database"
	"github.com/dbsmedya/fkorder/internal/graph"
	"github.com/dbsmedya/fkorder/internal/lock"
	"github.com/dbsmedya/fkorder/internal/schema"
	"github.com/dbsmedya/fkorder/internal/truncate"
)

var (
	truncateSet        string
	truncateTables     []string
	truncateSchemaFile string
	truncateDryRun     bool
	truncateYes        bool
)

var truncateCmd = &cobra.Command{
	Use:   "truncate",
	Short: "Empty a table set in delete order",
	Long: `Truncate removes all rows of a table set. Tables are emptied in delete
order (dependent tables first) so no statement removes rows that are still
referenced.

  - PostgreSQL: TRUNCATE TABLE, tables linked by foreign keys in one statement
  - MySQL: TRUNCATE TABLE per table with foreign key checks disabled
  - SQL Server, Oracle: DELETE FROM per table

A named advisory lock (MySQL, PostgreSQL) keeps two truncations of the
same set from overlapping. Tables listed in truncate.protected_tables are
refused.

Example:
  fkorder truncate --set legacy_ci --dry-run
  fkorder truncate --set legacy_ci --yes`,
	RunE: runTruncate,
}

func init() {
	truncateCmd.Flags().StringVarP(&truncateSet, "set", "s", "",
		"Table set name from configuration file")
	truncateCmd.Flags().StringSliceVarP(&truncateTables, "tables", "t", nil,
		"Tables to truncate (comma separated, schema-qualified allowed)")
	truncateCmd.Flags().StringVar(&truncateSchemaFile, "schema-file", "",
		"Read foreign keys from a YAML schema definition (requires --dry-run)")
	truncateCmd.Flags().BoolVar(&truncateDryRun, "dry-run", false,
		"Print the statements without executing them")
	truncateCmd.Flags().BoolVarP(&truncateYes, "yes", "y", false,
		"Confirm that the tables should be emptied")

	rootCmd.AddCommand(truncateCmd)
}

func runTruncate(cmd *cobra.Command, args []string) error {
	if truncateSchemaFile != "" && !truncateDryRun {
		return fmt.Errorf("--schema-file can only be used with --dry-run")
	}
	if !truncateDryRun && !truncateYes {
		return fmt.Errorf("refusing to truncate without --yes (use --dry-run to review the statements)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := database.SetupSignalHandler(commandContext(cmd), func(sig os.Signal) {
		log.Warnw("Received shutdown signal - stopping after the current statement", "signal", sig.String())
	})
	defer cancel()

	var (
		src       schema.ForeignKeySource
		dbManager *database.Manager
	)
	if truncateSchemaFile != "" {
		src, err = schema.LoadStaticSource(truncateSchemaFile)
		if err != nil {
			return fmt.Errorf("failed to load schema file: %w", err)
		}
	} else {
		dbManager, err = connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer dbManager.Close()

		src, err = newSQLSource(dbManager)
		if err != nil {
			return err
		}
	}

	tables, err := resolveTables(ctx, cfg, src, truncateSet, truncateTables, false, "")
	if err != nil {
		return err
	}

	result, err := graph.NewSorter(src, graph.BuildOptions{
		DynamicPartitionSchema: cfg.Partitions.DynamicSchema,
	}, withSet(log, truncateSet)).Sort(ctx, tables)
	if err != nil {
		return fmt.Errorf("failed to sort tables: %w", err)
	}

	opts := truncate.Options{SetName: truncateSet, DryRun: truncateDryRun}

	if truncateDryRun {
		_, err := truncate.New(nil, cfg.Database.Driver, cfg.Truncate, outputWriter, log).Run(ctx, result, opts)
		return err
	}

	conn, err := dbManager.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	if cfg.Truncate.Progress {
		opts.Progress = progressWriter()
	}

	stats, err := truncate.New(conn, dbManager.Driver(), cfg.Truncate, outputWriter, log).Run(ctx, result, opts)
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			return fmt.Errorf("table set is being truncated by another instance: %w", err)
		}
		return err
	}

	fmt.Fprintf(outputWriter, "Truncated %d table(s) in %d group(s) in %s\n", stats.Tables, stats.Groups, stats.Duration)
	return nil
}

// progressWriter returns stderr when it is a terminal, nil otherwise.
func progressWriter() io.Writer {
	if !isTerminal(os.Stderr) {
		return nil
	}
	return os.Stderr
}
