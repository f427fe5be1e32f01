package cmd

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/rls-analyzer/pkg/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags]",
	Short: "Fetch and analyze RLS policies from a live database",
	Long: `Fetch row-level-security policies from a database's pg_policies
view and analyze them. With --table only that table's policies are
fetched; otherwise every policy in the database is analyzed as one set.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().String("dsn", "", "Postgres connection string (required)")
	scanCmd.Flags().StringP("table", "t", "", "restrict the scan to one table")
	addReportFlags(scanCmd)
	_ = scanCmd.MarkFlagRequired("dsn")
}

func runScan(cmd *cobra.Command, args []string) error {
	setupLogging()

	dsn, _ := cmd.Flags().GetString("dsn")
	src, closeDB, err := source.Open(dsn)
	if err != nil {
		return err
	}
	defer closeDB()

	table, _ := cmd.Flags().GetString("table")
	policies, err := src.Policies(context.Background(), table)
	if err != nil {
		return err
	}
	if len(policies) == 0 {
		return errors.New("no row-level-security policies found")
	}
	slog.Debug("fetched policies", "table", table, "count", len(policies))

	return runReport(cmd, policies)
}
