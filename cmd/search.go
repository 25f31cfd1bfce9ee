package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genesis/internal/index"
	"genesis/internal/search"
)

var (
	searchRepoPath string
	searchGrep     bool
	searchFunction bool
	searchClass    bool
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the codebase semantically, by pattern, or by definition",
	Long: `Without flags the query runs against the assimilated search index.
--grep treats the query as a case-insensitive regex over source lines;
--function and --class look up definitions by exact name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		query := args[0]
		repoPath := searchRepoPath
		if repoPath == "" {
			repoPath = cfg.RepoPath()
		}

		switch {
		case searchGrep:
			matches, err := search.Grep(repoPath, query, cfg.IgnorePatterns(), os.Stderr)
			if err != nil {
				return err
			}
			for _, m := range matches {
				fmt.Printf("%s:%d: %s\n", m.File, m.Line, m.Content)
			}
			fmt.Printf("%d matches\n", len(matches))

		case searchFunction, searchClass:
			kind := "function"
			if searchClass {
				kind = "class"
			}
			defs, err := search.FindDefinitions(repoPath, query, kind, cfg.IgnorePatterns(), os.Stderr)
			if err != nil {
				return err
			}
			for _, d := range defs {
				fmt.Printf("%s:%d: %s %s\n", d.File, d.Line, d.Kind, d.Name)
			}
			fmt.Printf("%d definitions\n", len(defs))

		default:
			idx, err := index.Load(cfg.IndexDir())
			if err != nil {
				return err
			}
			if idx.Len() == 0 {
				return errors.New("search index is empty; run 'genesis assimilate' first")
			}
			for _, r := range idx.Search(query, searchLimit) {
				fmt.Printf("%.2f  %s\n", r.Score, r.Chunk.ID)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchRepoPath, "repo-path", "r", "", "path to repository to search")
	searchCmd.Flags().BoolVar(&searchGrep, "grep", false, "treat the query as a regex over source lines")
	searchCmd.Flags().BoolVar(&searchFunction, "function", false, "find function definitions by exact name")
	searchCmd.Flags().BoolVar(&searchClass, "class", false, "find class definitions by exact name")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum semantic results")
	rootCmd.AddCommand(searchCmd)
}
