package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
	driver    string
	dsn       string
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "fkorder",
	Short: "Order database tables by their foreign keys",
	Long: `fkorder reads the foreign keys of a set of tables from a live database
and lists the tables in dependency order. Tables that reference each other
are kept together in one group.

Features:
  - Copy order (referenced tables first) and delete order (dependent tables first)
  - Foreign-key cycles reported as groups with a concrete cycle path
  - Dynamic partitions resolved through their base table
  - MySQL, PostgreSQL, SQL Server and Oracle catalogs
  - Ordered truncation of table sets behind an advisory lock
  - HTTP endpoint for review tooling`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "fkorder.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Connection overrides
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "",
		"Override database driver (mysql, postgres, sqlserver, oracle)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "",
		"Override database connection string")

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel  string
	LogFormat string
	Driver    string
	DSN       string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:  logLevel,
		LogFormat: logFormat,
		Driver:    driver,
		DSN:       dsn,
	}
}
