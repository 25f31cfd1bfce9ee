package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genesis/internal/security"
)

var (
	scanRepoPath string
	scanOutput   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the codebase for common security issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		repoPath := scanRepoPath
		if repoPath == "" {
			repoPath = cfg.RepoPath()
		}

		report, err := security.ScanRepository(repoPath, cfg.IgnorePatterns(), os.Stderr)
		if err != nil {
			return err
		}

		fmt.Printf("Files scanned:   %d\n", report.FilesScanned)
		fmt.Printf("Vulnerabilities: %d\n", report.TotalVulnerabilities)
		for _, severity := range []string{"high", "medium", "low"} {
			if n := report.BySeverity[severity]; n > 0 {
				fmt.Printf("  %-6s %d\n", severity, n)
			}
		}
		for _, v := range report.Vulnerabilities {
			fmt.Printf("%s:%d [%s] %s\n", v.File, v.Line, v.Severity, v.Description)
		}

		return writeJSON(scanOutput, report)
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanRepoPath, "repo-path", "r", "", "path to repository to scan")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write the full report as JSON to this file")
	rootCmd.AddCommand(scanCmd)
}
