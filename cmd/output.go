package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/rls-analyzer/pkg/rls"
)

func outputReport(report *rls.SetReport, format string) error {
	switch format {
	case "json":
		return outputJSON(report)
	case "yaml":
		return outputYAML(report)
	case "text":
		return outputText(report)
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}

func outputJSON(report *rls.SetReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func outputYAML(report *rls.SetReport) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(report)
}

func outputText(report *rls.SetReport) error {
	fmt.Println(report.String())
	fmt.Println()

	for _, parsed := range report.Policies {
		fmt.Printf("policy %q (%s %s)\n", parsed.Policy.Name, parsed.Policy.Kind, parsed.Policy.Command)
		fmt.Printf("  expression:  %s\n", parsed.Expression)
		fmt.Printf("  complexity:  %s (score %d, %s to maintain, %s to test)\n",
			parsed.Complexity.Level, parsed.Complexity.Score,
			parsed.Complexity.Maintainability, parsed.Complexity.Testability)
		fmt.Printf("  security:    %s (score %d)\n", parsed.Security.Strength, parsed.Security.Score)
		for _, v := range parsed.Security.Vulnerabilities {
			fmt.Printf("    [%s] %s: %s\n", v.Severity, v.Type, v.Description)
		}
		for _, b := range parsed.Security.BypassRisks {
			fmt.Printf("    [bypass/%s] %s\n", b.Likelihood, b.Description)
		}
		fmt.Printf("  performance: %s impact, ~%.0f%% overhead\n",
			parsed.Performance.Impact, parsed.Performance.EstimatedOverhead)
		for _, idx := range parsed.Performance.IndexRecommendations {
			fmt.Printf("    index: %s (%s, %s priority)\n", idx.Column, idx.Type, idx.Priority)
		}
		fmt.Println()
	}

	for _, c := range report.Conflicts.Conflicts {
		fmt.Printf("conflict [%s] %s\n", c.Severity, c.Description)
	}
	for _, o := range report.Conflicts.Overlaps {
		fmt.Printf("overlap [%s/%s] %s\n", o.Kind, o.Redundancy, o.Description)
	}
	for _, g := range report.Conflicts.Gaps {
		fmt.Printf("gap [%s] %s: %s\n", g.Risk, g.Scenario, g.Description)
	}
	for _, rec := range report.Conflicts.Recommendations {
		fmt.Printf("recommendation: %s\n", rec)
	}
	return nil
}
