package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what genesis currently knows about the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		status, err := e.Status()
		if err != nil {
			return err
		}

		if status.SystemMap != nil {
			fmt.Println("System map loaded")
			fmt.Printf("  Files analyzed: %d\n", status.SystemMap.Fingerprint.FilesAnalyzed)
			fmt.Printf("  Index chunks:   %d\n", status.Chunks)
			fmt.Printf("  Repository:     %s\n", status.SystemMap.RepoPath)
		} else {
			fmt.Println("System map not found; run 'genesis assimilate' first")
		}

		if status.HasAPIKey {
			fmt.Println("LLM API key configured")
		} else {
			fmt.Println("LLM API key not found; set GENESIS_LLM_API_KEY")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
