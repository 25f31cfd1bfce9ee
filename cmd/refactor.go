package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genesis/internal/engine"
	"genesis/internal/llm"
	"genesis/internal/refactor"
)

var (
	refactorApply  bool
	refactorOutput string
)

var refactorCmd = &cobra.Command{
	Use:   "refactor [file]",
	Short: "Suggest refactorings for smelly code, optionally applying one",
	Long: `Without a file argument, suggestions cover the whole configured
repository. With --apply (file argument required), the highest-priority
suggestion is rewritten through the model and printed, or written to
the --output path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			if refactorApply {
				return errors.New("--apply needs a file argument")
			}
			suggestions, err := refactor.SuggestRepository(cfg.RepoPath(), cfg.IgnorePatterns(), os.Stderr)
			if err != nil {
				return err
			}
			printSuggestions(suggestions)
			return nil
		}

		path := args[0]
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		suggestions, err := refactor.SuggestFile(path, source)
		if err != nil {
			return err
		}
		printSuggestions(suggestions)

		if !refactorApply {
			return nil
		}
		if len(suggestions) == 0 {
			fmt.Println("Nothing to apply")
			return nil
		}

		e := engine.New(cfg, nil, os.Stdout, os.Stderr)
		styleGuide, err := e.StyleGuide()
		if err != nil {
			return err
		}
		client, err := llm.New(cfg)
		if err != nil {
			return err
		}

		code, err := refactor.Rewrite(cmd.Context(), client, styleGuide, pickSuggestion(suggestions), source)
		if err != nil {
			return err
		}
		if refactorOutput != "" {
			if err := os.WriteFile(refactorOutput, []byte(code), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", refactorOutput, err)
			}
			fmt.Printf("Refactored code written to %s\n", refactorOutput)
			return nil
		}
		fmt.Println(code)
		return nil
	},
}

func printSuggestions(suggestions []refactor.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Println("No refactoring suggestions")
		return
	}
	for _, s := range suggestions {
		fmt.Printf("%s:%s [%s] %s: %s\n", s.File, s.Function, s.Priority, s.Type, s.Description)
	}
}

// pickSuggestion prefers the first high-priority suggestion.
func pickSuggestion(suggestions []refactor.Suggestion) refactor.Suggestion {
	for _, s := range suggestions {
		if s.Priority == "high" {
			return s
		}
	}
	return suggestions[0]
}

func init() {
	refactorCmd.Flags().BoolVar(&refactorApply, "apply", false, "apply the top suggestion through the model")
	refactorCmd.Flags().StringVarP(&refactorOutput, "output", "o", "", "write refactored code to this file instead of stdout")
	rootCmd.AddCommand(refactorCmd)
}
