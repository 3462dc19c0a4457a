// Command tfc-collector fetches organizations, workspaces, and runs from
// Terraform Cloud and writes a consolidated snapshot document for offline
// analysis.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/obsidianops/tfc-collector/pkg/client"
	"github.com/obsidianops/tfc-collector/pkg/collector"
	"github.com/obsidianops/tfc-collector/pkg/logging"
	"github.com/obsidianops/tfc-collector/pkg/snapshot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "tfc-collector",
	Short:        "Collect Terraform Cloud organizations, workspaces, and runs into a snapshot file",
	SilenceUsage: true,
	RunE:         runCollect,
}

func runCollect(cmd *cobra.Command, args []string) error {
	logging.Setup(logging.Config{
		Level:  viper.GetString("log-level"),
		Pretty: viper.GetBool("log-pretty"),
	})

	token := viper.GetString("token")
	if token == "" {
		return errors.New("api token is required (--token or TFC_TOKEN)")
	}

	cfg := client.Config{
		Token:                 token,
		BaseURL:               strings.TrimRight(viper.GetString("base-url"), "/"),
		MaxConcurrentRequests: viper.GetInt("max-concurrent"),
		Timeout:               time.Duration(viper.GetInt("timeout")) * time.Second,
	}

	tfc, err := client.New(cfg)
	if err != nil {
		return err
	}

	snap, err := collector.New(tfc).Collect(cmd.Context())
	if err != nil {
		return err
	}

	output := viper.GetString("output")
	if err := snap.WriteFile(output); err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), snap.Summary, output)
	return nil
}

func printSummary(w io.Writer, summary snapshot.Summary, output string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "TERRAFORM CLOUD DATA COLLECTION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Organizations: %d\n", summary.TotalOrganizations)
	fmt.Fprintf(w, "Workspaces: %d\n", summary.TotalWorkspaces)
	fmt.Fprintf(w, "Runs: %d\n", summary.TotalRuns)
	fmt.Fprintf(w, "Output file: %s\n", output)
	fmt.Fprintln(w, strings.Repeat("=", 50))
}

func init() {
	rootCmd.Flags().String("token", "", "Terraform Cloud API token")
	rootCmd.Flags().String("output", "terraform_data.json", "Output file path")
	rootCmd.Flags().Int("max-concurrent", 10, "Max concurrent requests")
	rootCmd.Flags().Int("timeout", 30, "Request timeout in seconds")
	rootCmd.Flags().String("base-url", client.DefaultBaseURL, "Terraform Cloud API base URL")
	rootCmd.Flags().String("log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.Flags().Bool("log-pretty", false, "Human-readable log output")

	cobra.CheckErr(viper.BindPFlags(rootCmd.Flags()))
	viper.SetEnvPrefix("TFC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
