// Package docs generates documentation: an API listing extracted from
// the syntax tree, and model-written READMEs and docstrings.
package docs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"genesis/internal/classify"
	"genesis/internal/discover"
	"genesis/internal/llm"
	"genesis/internal/model"
)

// FunctionDoc describes one function definition.
type FunctionDoc struct {
	Name      string `json:"name"`
	Line      int    `json:"line"`
	Docstring string `json:"docstring,omitempty"`
}

// ClassDoc describes one class definition with its methods.
type ClassDoc struct {
	Name      string   `json:"name"`
	Line      int      `json:"line"`
	Methods   []string `json:"methods,omitempty"`
	Docstring string   `json:"docstring,omitempty"`
}

// Module is the API surface of one file.
type Module struct {
	File      string        `json:"file"`
	Functions []FunctionDoc `json:"functions,omitempty"`
	Classes   []ClassDoc    `json:"classes,omitempty"`
}

// Build extracts the API surface of every Python file under root.
// Unreadable or unparseable files are skipped with a warning.
func Build(root string, ignorePatterns []string, stderr io.Writer) ([]Module, error) {
	files, err := discover.Files(root, ignorePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	classifier, err := classify.New()
	if err != nil {
		return nil, err
	}

	var modules []Module
	for _, rel := range files {
		source, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not read %s: %v\n", rel, err)
			continue
		}

		defs, err := classifier.Definitions(source)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not document %s: %v\n", rel, err)
			continue
		}

		modules = append(modules, buildModule(rel, defs))
	}
	return modules, nil
}

func buildModule(file string, defs []classify.Definition) Module {
	m := Module{File: file}
	for _, d := range defs {
		switch d.Kind {
		case "function":
			m.Functions = append(m.Functions, FunctionDoc{
				Name:      d.Name,
				Line:      d.StartLine,
				Docstring: docstringOf(d.Text),
			})
		case "class":
			m.Classes = append(m.Classes, ClassDoc{
				Name:      d.Name,
				Line:      d.StartLine,
				Methods:   methodsOf(d, defs),
				Docstring: docstringOf(d.Text),
			})
		}
	}
	return m
}

// methodsOf lists the functions defined inside the class's line span.
func methodsOf(class classify.Definition, defs []classify.Definition) []string {
	var methods []string
	for _, d := range defs {
		if d.Kind != "function" {
			continue
		}
		if d.StartLine > class.StartLine && d.EndLine <= class.EndLine {
			methods = append(methods, d.Name)
		}
	}
	return methods
}

// docstringOf extracts a leading triple-quoted docstring from a
// definition's source, if the body opens with one.
func docstringOf(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return ""
	}
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, quote := range []string{`"""`, "'''"} {
			if !strings.HasPrefix(trimmed, quote) {
				continue
			}
			body := trimmed[len(quote):]
			if end := strings.Index(body, quote); end >= 0 {
				return strings.TrimSpace(body[:end])
			}
			// Multi-line docstring: first line only.
			return strings.TrimSpace(body)
		}
		return "" // body starts with code
	}
	return ""
}

// Markdown renders the API listing.
func Markdown(modules []Module) string {
	var b strings.Builder
	b.WriteString("# API Documentation\n")

	for _, m := range modules {
		fmt.Fprintf(&b, "\n## %s\n", m.File)

		if len(m.Classes) > 0 {
			b.WriteString("\n### Classes\n")
			for _, c := range m.Classes {
				fmt.Fprintf(&b, "\n#### %s (line %d)\n", c.Name, c.Line)
				if c.Docstring != "" {
					fmt.Fprintf(&b, "\n%s\n", c.Docstring)
				}
				if len(c.Methods) > 0 {
					fmt.Fprintf(&b, "\n**Methods:** %s\n", strings.Join(c.Methods, ", "))
				}
			}
		}

		if len(m.Functions) > 0 {
			b.WriteString("\n### Functions\n")
			for _, f := range m.Functions {
				fmt.Fprintf(&b, "\n#### %s (line %d)\n", f.Name, f.Line)
				if f.Docstring != "" {
					fmt.Fprintf(&b, "\n%s\n", f.Docstring)
				}
			}
		}
	}
	return b.String()
}

// WriteAPIDocs builds the listing and writes API.md under outputDir.
// Returns the output path and the number of files documented.
func WriteAPIDocs(root string, ignorePatterns []string, outputDir string, stderr io.Writer) (string, int, error) {
	modules, err := Build(root, ignorePatterns, stderr)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating docs dir: %w", err)
	}

	target := filepath.Join(outputDir, "API.md")
	if err := os.WriteFile(target, []byte(Markdown(modules)), 0o644); err != nil {
		return "", 0, fmt.Errorf("writing %s: %w", target, err)
	}
	return target, len(modules), nil
}

// Readme asks the model for a project README from repository totals.
func Readme(ctx context.Context, client llm.Client, files, lines int, deps []string) (string, error) {
	userPrompt := fmt.Sprintf(`Generate a README.md for this project:

Total files: %d
Lines of code: %d
Main dependencies: %s

Create a professional README with:
- Project description
- Installation instructions
- Usage examples
- Features
- Contributing guidelines`, files, lines, strings.Join(deps, ", "))

	readme, err := client.Generate(ctx, userPrompt,
		"Generate a comprehensive README.md file for a Python project.")
	if err != nil {
		return "", fmt.Errorf("generating readme: %w", err)
	}
	return llm.StripFences(readme), nil
}

// Docstring asks the model for a docstring for one function and wraps
// it in the repository's docstring quotes.
func Docstring(ctx context.Context, client llm.Client, functionSource string, style model.DocstringStyle) (string, error) {
	quote := `"""`
	if style == model.TripleSingle {
		quote = "'''"
	}

	userPrompt := fmt.Sprintf(`Generate a docstring for this function:

%s

Analyze the function body and create a detailed docstring.`, functionSource)

	systemPrompt := fmt.Sprintf(
		"Generate a comprehensive docstring in %s style following Google/NumPy docstring format.", style)

	docstring, err := client.Generate(ctx, userPrompt, systemPrompt)
	if err != nil {
		return "", fmt.Errorf("generating docstring: %w", err)
	}
	return fmt.Sprintf("%s\n%s\n%s", quote, llm.StripFences(docstring), quote), nil
}
