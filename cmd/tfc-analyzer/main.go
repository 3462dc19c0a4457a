// Command tfc-analyzer prints reports from a snapshot file produced by
// tfc-collector. The summary report is always printed; detail reports are
// selected with flags.
package main

import (
	"os"
	"strings"

	"github.com/obsidianops/tfc-collector/pkg/report"
	"github.com/obsidianops/tfc-collector/pkg/snapshot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeCmd = &cobra.Command{
	Use:          "tfc-analyzer",
	Short:        "Analyze a Terraform Cloud snapshot file",
	SilenceUsage: true,
	RunE:         runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	snap, err := snapshot.ReadFile(viper.GetString("input"))
	if err != nil {
		return err
	}

	all := viper.GetBool("all")

	w := cmd.OutOrStdout()
	report.Summary(w, snap)
	if all || viper.GetBool("organizations") {
		report.Organizations(w, snap)
	}
	if all || viper.GetBool("workspaces") {
		report.Workspaces(w, snap)
	}
	if all || viper.GetBool("runs") {
		report.Runs(w, snap)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().String("input", "terraform_data.json", "Snapshot file to analyze")
	analyzeCmd.Flags().Bool("organizations", false, "Print the organizations report")
	analyzeCmd.Flags().Bool("workspaces", false, "Print the workspaces report")
	analyzeCmd.Flags().Bool("runs", false, "Print the runs report")
	analyzeCmd.Flags().Bool("all", false, "Print all reports")

	cobra.CheckErr(viper.BindPFlags(analyzeCmd.Flags()))
	viper.SetEnvPrefix("TFC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := analyzeCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
