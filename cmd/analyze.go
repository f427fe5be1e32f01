package cmd

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/rls-analyzer/pkg/config"
	"github.com/nsxbet/rls-analyzer/pkg/logger"
	"github.com/nsxbet/rls-analyzer/pkg/rls"
	"github.com/nsxbet/rls-analyzer/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <policies-file>",
	Short: "Analyze RLS policies from a YAML or JSON file",
	Long: `Analyze the row-level-security policies listed in a file.

Each policy needs a name, command, kind, and expression; the expression
is the raw USING or WITH CHECK clause text. All policies in the file are
treated as one set for conflict, overlap, and gap detection.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addReportFlags(analyzeCmd)
}

// addReportFlags declares the flags shared by the analyze and scan
// commands. They are read back through the command, not viper, so the two
// commands do not clash on key names.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	cmd.Flags().StringP("rules", "r", "", "path to analyzer configuration file")
	cmd.Flags().Bool("fail-on-critical", false, "exit with non-zero code if critical findings exist")
	cmd.Flags().Bool("fail-on-high", false, "exit with non-zero code if high or critical findings exist")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	setupLogging()

	policies, err := loadPolicyFile(args[0])
	if err != nil {
		return err
	}
	slog.Debug("loaded policies", "file", args[0], "count", len(policies))

	return runReport(cmd, policies)
}

// runReport is the shared back half of analyze and scan: build the
// analyzer, analyze the set, render, and apply the exit-code gates.
func runReport(cmd *cobra.Command, policies []types.Policy) error {
	rulesPath, _ := cmd.Flags().GetString("rules")
	analyzer, err := newAnalyzer(rulesPath)
	if err != nil {
		return err
	}
	report := analyzer.AnalyzeSet(policies)

	format, _ := cmd.Flags().GetString("output")
	if err := outputReport(report, format); err != nil {
		return err
	}

	failCritical, _ := cmd.Flags().GetBool("fail-on-critical")
	failHigh, _ := cmd.Flags().GetBool("fail-on-high")
	if (failCritical && report.HasCritical()) || (failHigh && report.HasHigh()) {
		os.Exit(1)
	}
	return nil
}

// setupLogging installs the default logger per the verbose/debug flags.
func setupLogging() {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelInfo
	}
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.NewPretty(level).GetSlogLogger())
}

// newAnalyzer builds the analyzer, applying the rules config if a path
// was given.
func newAnalyzer(rulesPath string) (*rls.Analyzer, error) {
	opts := []rls.Option{rls.WithLogger(slog.Default())}
	if rulesPath != "" {
		cfg, err := config.LoadFromFile(rulesPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load rules from %s", rulesPath)
		}
		opts = append(opts, rls.WithConfig(cfg))
	}
	return rls.New(opts...), nil
}

// policyFile is the on-disk shape of a policy list.
type policyFile struct {
	Policies []types.Policy `yaml:"policies" json:"policies"`
}

func loadPolicyFile(filename string) ([]types.Policy, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policies file: %s", filename)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		if jsonErr := json.Unmarshal(data, &file); jsonErr != nil {
			return nil, errors.Wrapf(err, "failed to parse policies file: %s", filename)
		}
	}
	if len(file.Policies) == 0 {
		return nil, errors.Errorf("no policies found in %s", filename)
	}
	return file.Policies, nil
}
