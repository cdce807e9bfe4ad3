package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("replaybench version %s\n", version)
		fmt.Println("Deterministic replay and execution engine for trading-agent benchmarks")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
