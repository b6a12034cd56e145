package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/fkorder/internal/config"
	"github.com/dbsmedya/fkorder/internal/database"
	"github.com/dbsmedya/fkorder/internal/graph"
	"github.com/dbsmedya/fkorder/internal/logger"
	"github.com/dbsmedya/fkorder/internal/render"
	"github.com/dbsmedya/fkorder/internal/schema"
)

var (
	sortSet        string
	sortTables     []string
	sortAll        bool
	sortSchema     string
	sortSchemaFile string
	sortFormat     string
	sortOrder      string
	sortEdges      bool
	sortStrict     bool
)

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "List tables in foreign-key order",
	Long: `Sort reads the foreign keys of the given tables and prints them as groups
in dependency order. Tables that reference each other form one group.

Tables come from a configured table set (--set), an explicit list
(--tables), every table of a schema (--all), or a combination.

Foreign keys are read from the configured database, or from a YAML schema
definition with --schema-file.

Example:
  fkorder sort --set ci_builds
  fkorder sort --tables users,posts,comments --order delete
  fkorder sort --all --schema public --format mermaid`,
	RunE: runSort,
}

func init() {
	sortCmd.Flags().StringVarP(&sortSet, "set", "s", "",
		"Table set name from configuration file")
	sortCmd.Flags().StringSliceVarP(&sortTables, "tables", "t", nil,
		"Tables to sort (comma separated, schema-qualified allowed)")
	sortCmd.Flags().BoolVar(&sortAll, "all", false,
		"Sort every table of the schema")
	sortCmd.Flags().StringVar(&sortSchema, "schema", "",
		"Schema listed by --all (default: database.schema)")
	sortCmd.Flags().StringVar(&sortSchemaFile, "schema-file", "",
		"Read foreign keys from a YAML schema definition instead of the database")
	sortCmd.Flags().StringVarP(&sortFormat, "format", "f", "text",
		"Output format (text, json, yaml, mermaid)")
	sortCmd.Flags().StringVarP(&sortOrder, "order", "o", "copy",
		"Group order: copy (referenced tables first) or delete (dependent tables first)")
	sortCmd.Flags().BoolVar(&sortEdges, "edges", false,
		"Include the foreign keys between the tables")
	sortCmd.Flags().BoolVar(&sortStrict, "strict", false,
		"Fail when the tables contain foreign-key cycles")

	rootCmd.AddCommand(sortCmd)
}

func runSort(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(sortFormat)
	if err != nil {
		return err
	}
	order, err := graph.ParseOrder(sortOrder)
	if err != nil {
		return err
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

	ctx, cancel := database.SetupSignalHandler(commandContext(cmd), nil)
	defer cancel()

	src, closeSrc, err := openSource(ctx, cfg, sortSchemaFile)
	if err != nil {
		return err
	}
	defer closeSrc()

	tables, err := resolveTables(ctx, cfg, src, sortSet, sortTables, sortAll, sortSchema)
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"tables": len(tables),
		"format": format,
		"order":  order,
	}).Debug("Sorting tables")

	sorter := graph.NewSorter(src, graph.BuildOptions{
		DynamicPartitionSchema: cfg.Partitions.DynamicSchema,
	}, withSet(log, sortSet))

	result, err := sorter.Sort(ctx, tables)
	if err != nil {
		return fmt.Errorf("failed to sort tables: %w", err)
	}

	err = render.Render(outputWriter, result, format, render.Options{
		SetName: sortSet,
		Order:   order,
		Color:   useColor(),
		Edges:   sortEdges,
	})
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}

	if sortStrict {
		return result.Graph.Validate()
	}
	return nil
}

// openSource returns the foreign key source and a function releasing it.
// A schema file takes precedence over the configured database.
func openSource(ctx context.Context, cfg *config.Config, schemaFile string) (schema.ForeignKeySource, func(), error) {
	if schemaFile != "" {
		src, err := schema.LoadStaticSource(schemaFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load schema file: %w", err)
		}
		return src, func() {}, nil
	}

	dbManager, err := connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	src, err := newSQLSource(dbManager)
	if err != nil {
		dbManager.Close()
		return nil, nil, err
	}
	return src, func() { dbManager.Close() }, nil
}

// resolveTables combines the tables of the set, the explicit list and,
// with all, every table of the schema.
func resolveTables(ctx context.Context, cfg *config.Config, src schema.ForeignKeySource,
	setName string, explicit []string, all bool, schemaName string) ([]string, error) {
	if all {
		lister, ok := src.(schema.TableLister)
		if !ok {
			return nil, fmt.Errorf("the foreign key source cannot list tables")
		}
		if schemaName == "" {
			schemaName = cfg.Database.Schema
		}
		listed, err := lister.Tables(ctx, schemaName)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		explicit = append(explicit, listed...)
	}

	tables, err := cfg.ResolveTables(setName, explicit)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables given (use --set, --tables or --all)")
	}
	return tables, nil
}

func withSet(log *logger.Logger, setName string) *logger.Logger {
	if setName == "" {
		return log
	}
	return log.WithSet(setName)
}
