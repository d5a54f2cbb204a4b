package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jobradar %s (rules %s)\n", version, rules.Default().Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
