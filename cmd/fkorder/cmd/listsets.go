package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listSetsCmd = &cobra.Command{
	Use:   "list-sets",
	Short: "List all table sets defined in configuration",
	Long: `List-sets displays all table sets defined in the configuration file
along with their tables.

Example:
  fkorder list-sets --config fkorder.yaml`,
	RunE: runListSets,
}

func init() {
	rootCmd.AddCommand(listSetsCmd)
}

func runListSets(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := cfg.ListTableSets()
	if len(names) == 0 {
		cmd.Printf("No table sets defined in %s\n", configFile)
		return nil
	}

	cmd.Printf("Table sets defined in %s:\n\n", configFile)

	for i, name := range names {
		set, err := cfg.GetTableSet(name)
		if err != nil {
			return fmt.Errorf("failed to get table set %q: %w", name, err)
		}

		cmd.Printf("%d. %s\n", i+1, name)
		if set.Description != "" {
			cmd.Printf("   Description:   %s\n", set.Description)
		}
		cmd.Printf("   Tables:        %d table(s)\n", len(set.Tables))
		for _, table := range set.Tables {
			marker := ""
			if cfg.Truncate.IsProtected(table) {
				marker = " (protected)"
			}
			cmd.Printf("      - %s%s\n", table, marker)
		}

		if i < len(names)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d table set(s)\n", len(names))
	if dyn := cfg.Partitions.DynamicSchema; dyn != "" {
		cmd.Printf("Dynamic partition schema: %s\n", strings.TrimSpace(dyn))
	}
	return nil
}
