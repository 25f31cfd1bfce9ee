package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var batchOutputDir string

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run many generation requests from a batch file",
	Long: `The batch file is either JSON ({"requests": [{"prompt": ...}]}) or
plain text with one request per line. Requests run in order; a failed
request is recorded and the batch continues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newGeneratingEngine()
		if err != nil {
			return err
		}
		result, err := e.GenerateBatch(cmd.Context(), args[0], batchOutputDir)
		if err != nil {
			return err
		}
		fmt.Printf("Total: %d, successful: %d, failed: %d\n",
			result.Total, result.Successful, result.Failed)
		for _, item := range result.Items {
			if item.Status == "error" {
				fmt.Printf("  failed: %s (%s)\n", item.Request.Prompt, item.Error)
			}
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "o", "",
		"output directory for generated code (default: ./generated_code)")
	rootCmd.AddCommand(batchCmd)
}
