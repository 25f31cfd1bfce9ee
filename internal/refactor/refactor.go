// Package refactor turns code smells into refactoring suggestions and
// applies them through the llm client.
package refactor

import (
	"context"
	"fmt"
	"io"

	"genesis/internal/analysis"
	"genesis/internal/llm"
)

// Suggestion is one refactoring opportunity derived from a smell.
type Suggestion struct {
	Type        string `json:"type"` // extract_method, simplify_conditionals, reduce_nesting
	File        string `json:"file"`
	Function    string `json:"function"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// suggestionFor maps each smell kind to its remedy.
var suggestionFor = map[string]Suggestion{
	"long_function": {
		Type:        "extract_method",
		Description: "Extract parts of this long function into smaller functions",
		Priority:    "medium",
	},
	"high_complexity": {
		Type:        "simplify_conditionals",
		Description: "Simplify complex conditionals or extract into separate functions",
		Priority:    "high",
	},
	"deep_nesting": {
		Type:        "reduce_nesting",
		Description: "Use early returns or extract methods to reduce nesting",
		Priority:    "medium",
	},
}

// Suggest converts smells into suggestions, preserving order.
func Suggest(smells []analysis.Smell) []Suggestion {
	var suggestions []Suggestion
	for _, s := range smells {
		template, ok := suggestionFor[s.Kind]
		if !ok {
			continue
		}
		template.File = s.File
		template.Function = s.Name
		suggestions = append(suggestions, template)
	}
	return suggestions
}

// SuggestFile analyzes one file and suggests refactorings for it.
// Returns classify.ErrParse (wrapped by analysis) for unparseable
// sources.
func SuggestFile(path string, source []byte) ([]Suggestion, error) {
	_, funcs, err := analysis.New().AnalyzeFile(path, source)
	if err != nil {
		return nil, err
	}
	return Suggest(analysis.DetectSmells(funcs)), nil
}

// SuggestRepository analyzes every Python file under root and collects
// suggestions across the repository.
func SuggestRepository(root string, ignorePatterns []string, stderr io.Writer) ([]Suggestion, error) {
	report, err := analysis.AnalyzeRepository(root, ignorePatterns, stderr)
	if err != nil {
		return nil, err
	}
	return Suggest(report.Smells), nil
}

const rewriteSystemPrompt = `You are an expert code refactoring assistant. Refactor the provided code according to the request while maintaining:
- Exact same functionality
- Code style from the style guide
- All tests should still pass

%s

Return only the refactored code, no explanations.`

// Rewrite asks the model to apply one refactoring to the source and
// returns the rewritten code with markdown fences stripped.
func Rewrite(ctx context.Context, client llm.Client, styleGuide string, s Suggestion, source []byte) (string, error) {
	userPrompt := fmt.Sprintf(`Refactor the following code using %s:

Description: %s

Code:
%s

Provide the complete refactored code.`, s.Type, s.Description, string(source))

	refactored, err := client.Generate(ctx, userPrompt, fmt.Sprintf(rewriteSystemPrompt, styleGuide))
	if err != nil {
		return "", fmt.Errorf("refactoring %s: %w", s.File, err)
	}
	return llm.StripFences(refactored), nil
}
