package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"genesis/internal/analysis"
	"genesis/internal/docs"
	"genesis/internal/engine"
	"genesis/internal/llm"
)

var (
	docsRepoPath  string
	docsOutputDir string
	docsReadme    bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate API documentation, optionally a README",
	Long: `Writes API.md listing every function and class with its docstring.
--readme additionally asks the model for a README.md, seeded with the
repository's metrics and common imports (requires a prior assimilate).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		repoPath := docsRepoPath
		if repoPath == "" {
			repoPath = cfg.RepoPath()
		}
		outputDir := docsOutputDir
		if outputDir == "" {
			outputDir = "docs"
		}

		target, documented, err := docs.WriteAPIDocs(repoPath, cfg.IgnorePatterns(), outputDir, os.Stderr)
		if err != nil {
			return err
		}
		fmt.Printf("API docs for %d files written to %s\n", documented, target)

		if !docsReadme {
			return nil
		}

		e := engine.New(cfg, nil, os.Stdout, os.Stderr)
		status, err := e.Status()
		if err != nil {
			return err
		}
		if status.SystemMap == nil {
			return errors.New("no system map; run 'genesis assimilate' before --readme")
		}
		report, err := analysis.AnalyzeRepository(repoPath, cfg.IgnorePatterns(), os.Stderr)
		if err != nil {
			return err
		}
		client, err := llm.New(cfg)
		if err != nil {
			return err
		}

		readme, err := docs.Readme(cmd.Context(), client,
			len(report.Files), report.TotalLines,
			status.SystemMap.Fingerprint.Imports.CommonThirdParty)
		if err != nil {
			return err
		}
		readmePath := filepath.Join(outputDir, "README.md")
		if err := os.WriteFile(readmePath, []byte(readme), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", readmePath, err)
		}
		fmt.Printf("README written to %s\n", readmePath)
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVarP(&docsRepoPath, "repo-path", "r", "", "path to repository to document")
	docsCmd.Flags().StringVarP(&docsOutputDir, "output-dir", "o", "", "output directory (default: ./docs)")
	docsCmd.Flags().BoolVar(&docsReadme, "readme", false, "also generate README.md through the model")
	rootCmd.AddCommand(docsCmd)
}
