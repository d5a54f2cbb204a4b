package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active rule table",
	Long:  "Loads the rule table from rules_path (or the embedded default) and prints its version and rules in evaluation order.",
	RunE:  runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}
	table, err := rules.Load(cfg.RulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load rules: %v\n", err)
		os.Exit(2)
	}

	source := cfg.RulesPath
	if source == "" {
		source = "(embedded default)"
	}
	fmt.Printf("Rule table %s from %s\n\n", table.Version, source)

	fmt.Printf("%-32s %-10s %-16s %7s  %s\n", "Rule", "Group", "Match", "Weight", "Patterns")
	fmt.Println(strings.Repeat("─", 90))
	for _, r := range table.Rules {
		patterns := strings.Join(r.Any, ", ")
		if r.Value != "" {
			patterns = r.Value
		}
		group := r.Group
		if group == "" {
			group = "-"
		}
		fmt.Printf("%-32s %-10s %-16s %+7d  %s\n", r.Name, group, r.Match, r.Weight, patterns)
	}

	fmt.Printf("\nTotal: %d rules, %d skills, %d employment keywords, %d remote keywords, %d categories\n",
		len(table.Rules), len(table.Skills), len(table.Employment), len(table.Remote), len(table.Categories))
	return nil
}
