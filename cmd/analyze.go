package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genesis/internal/analysis"
)

var (
	analyzeRepoPath string
	analyzeOutput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze codebase complexity and structure metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		repoPath := analyzeRepoPath
		if repoPath == "" {
			repoPath = cfg.RepoPath()
		}

		report, err := analysis.AnalyzeRepository(repoPath, cfg.IgnorePatterns(), os.Stderr)
		if err != nil {
			return err
		}

		fmt.Printf("Files analyzed:  %d\n", len(report.Files))
		fmt.Printf("Total lines:     %d\n", report.TotalLines)
		fmt.Printf("Code lines:      %d\n", report.TotalCodeLines)
		fmt.Printf("Functions:       %d\n", report.TotalFunctions)
		fmt.Printf("Classes:         %d\n", report.TotalClasses)
		fmt.Printf("Avg complexity:  %.2f\n", report.AvgComplexity)

		if len(report.MostComplex) > 0 {
			fmt.Println("Most complex functions:")
			for _, f := range report.MostComplex {
				fmt.Printf("  %s:%s complexity %d\n", f.File, f.Name, f.Complexity)
			}
		}
		if len(report.Smells) > 0 {
			fmt.Println("Smells:")
			for _, s := range report.Smells {
				fmt.Printf("  %s:%s %s (%s)\n", s.File, s.Name, s.Kind, s.Detail)
			}
		}

		return writeJSON(analyzeOutput, report)
	},
}

// writeJSON saves a report when an output path is given.
func writeJSON(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Results saved to %s\n", path)
	return nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeRepoPath, "repo-path", "r", "", "path to repository to analyze")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the full report as JSON to this file")
	rootCmd.AddCommand(analyzeCmd)
}
