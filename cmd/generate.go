package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateOutputDir string

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate code for a natural-language request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newGeneratingEngine()
		if err != nil {
			return err
		}
		result, err := e.Generate(cmd.Context(), args[0], generateOutputDir)
		if err != nil {
			return err
		}

		fmt.Printf("Output directory: %s\n", result.OutputDir)
		if len(result.Files) > 0 {
			fmt.Println("Generated files:")
			for _, f := range result.Files {
				fmt.Printf("  %s\n", f.Path)
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutputDir, "output-dir", "o", "",
		"output directory for generated code (default: ./generated_code)")
	rootCmd.AddCommand(generateCmd)
}
