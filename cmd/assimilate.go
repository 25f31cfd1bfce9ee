package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assimilateRepoPath string

var assimilateCmd = &cobra.Command{
	Use:   "assimilate",
	Short: "Build the style fingerprint and search index for a repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		result, err := e.Assimilate(assimilateRepoPath)
		if err != nil {
			return err
		}
		fmt.Printf("Repository: %s\n", result.SystemMap.RepoPath)
		return nil
	},
}

func init() {
	assimilateCmd.Flags().StringVarP(&assimilateRepoPath, "repo-path", "r", "",
		"path to repository to analyze (default: configured repository.path)")
	rootCmd.AddCommand(assimilateCmd)
}
