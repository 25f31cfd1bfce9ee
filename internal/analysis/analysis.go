// Package analysis computes code-quality metrics for Python sources:
// per-file counts, cyclomatic complexity, nesting depth, and a small
// set of structural smells.
package analysis

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"genesis/internal/classify"
	"genesis/internal/discover"
)

const (
	longFunctionLines = 50
	highComplexity    = 10
	deepNesting       = 4
	mostComplexLimit  = 10
)

// FileMetrics summarizes one source file.
type FileMetrics struct {
	Path       string  `json:"path"`
	Lines      int     `json:"lines"`
	CodeLines  int     `json:"code_lines"`
	Functions  int     `json:"functions"`
	Classes    int     `json:"classes"`
	Imports    int     `json:"imports"`
	Complexity int     `json:"complexity"`
	MaxNesting int     `json:"max_nesting"`
	AvgFuncLen float64 `json:"avg_function_length"`
}

// FunctionMetric summarizes one function definition.
type FunctionMetric struct {
	File       string `json:"file"`
	Name       string `json:"name"`
	Lines      int    `json:"lines"`
	Complexity int    `json:"complexity"`
	Nesting    int    `json:"nesting"`
}

// Smell flags a function that crosses a structural threshold.
type Smell struct {
	File   string `json:"file"`
	Name   string `json:"name"`
	Kind   string `json:"kind"` // long_function, high_complexity, deep_nesting
	Detail string `json:"detail"`
}

// Report is the repository roll-up.
type Report struct {
	Files            []FileMetrics    `json:"files"`
	TotalLines       int              `json:"total_lines"`
	TotalCodeLines   int              `json:"total_code_lines"`
	TotalFunctions   int              `json:"total_functions"`
	TotalClasses     int              `json:"total_classes"`
	TotalComplexity  int              `json:"total_complexity"`
	AvgComplexity    float64          `json:"average_complexity"`
	MostComplexFiles []FileMetrics    `json:"most_complex_files"`
	MostComplex      []FunctionMetric `json:"most_complex_functions"`
	Smells           []Smell          `json:"smells"`
}

// Analyzer walks Python parse trees. Not safe for concurrent use; each
// goroutine needs its own Analyzer.
type Analyzer struct {
	parser *sitter.Parser
}

// New creates an Analyzer with a fresh parser.
func New() *Analyzer {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Analyzer{parser: p}
}

// AnalyzeRepository computes metrics for every Python file under root.
// Unreadable or unparseable files are skipped with a warning on stderr.
func AnalyzeRepository(root string, ignorePatterns []string, stderr io.Writer) (*Report, error) {
	files, err := discover.Files(root, ignorePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	a := New()
	report := &Report{}
	var allFuncs []FunctionMetric

	for _, rel := range files {
		source, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not read %s: %v\n", rel, err)
			continue
		}

		fm, funcs, err := a.AnalyzeFile(rel, source)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not analyze %s: %v\n", rel, err)
			continue
		}

		report.Files = append(report.Files, *fm)
		report.TotalLines += fm.Lines
		report.TotalCodeLines += fm.CodeLines
		report.TotalFunctions += fm.Functions
		report.TotalClasses += fm.Classes
		allFuncs = append(allFuncs, funcs...)
	}

	for _, fm := range report.Files {
		report.TotalComplexity += fm.Complexity
	}
	if len(report.Files) > 0 {
		report.AvgComplexity = float64(report.TotalComplexity) / float64(len(report.Files))
	}
	report.MostComplexFiles = rankFiles(report.Files)
	report.MostComplex = rankByComplexity(allFuncs)
	report.Smells = DetectSmells(allFuncs)
	return report, nil
}

// AnalyzeFile computes metrics for one file's source. Returns ErrParse
// (from classify) when the source does not parse.
func (a *Analyzer) AnalyzeFile(path string, source []byte) (*FileMetrics, []FunctionMetric, error) {
	tree, err := a.parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return nil, nil, classify.ErrParse
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, nil, classify.ErrParse
	}

	fm := &FileMetrics{Path: path}
	fm.Lines, fm.CodeLines = countLines(string(source))

	var funcs []FunctionMetric
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition":
			fm.Functions++
			funcs = append(funcs, functionMetric(path, n, source))
		case "class_definition":
			fm.Classes++
		case "import_statement", "import_from_statement":
			fm.Imports++
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)

	for _, f := range funcs {
		fm.Complexity += f.Complexity
		if f.Nesting > fm.MaxNesting {
			fm.MaxNesting = f.Nesting
		}
	}
	if len(funcs) > 0 {
		total := 0
		for _, f := range funcs {
			total += f.Lines
		}
		fm.AvgFuncLen = float64(total) / float64(len(funcs))
	}
	return fm, funcs, nil
}

func functionMetric(path string, n *sitter.Node, source []byte) FunctionMetric {
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = string(source[nameNode.StartByte():nameNode.EndByte()])
	}
	return FunctionMetric{
		File:       path,
		Name:       name,
		Lines:      int(n.EndPoint().Row-n.StartPoint().Row) + 1,
		Complexity: complexity(n),
		Nesting:    maxNesting(n, 0),
	}
}

// decisionNodes are the branch points counted toward cyclomatic
// complexity, per McCabe adapted to the Python grammar.
var decisionNodes = map[string]bool{
	"if_statement":           true,
	"elif_clause":            true,
	"for_statement":          true,
	"while_statement":        true,
	"except_clause":          true,
	"boolean_operator":       true,
	"conditional_expression": true,
	"for_in_clause":          true,
	"if_clause":              true,
	"case_clause":            true,
}

// complexity is 1 plus the number of decision points in the subtree.
// Nested function definitions contribute to the enclosing function.
func complexity(n *sitter.Node) int {
	count := 1
	var walk func(m *sitter.Node)
	walk = func(m *sitter.Node) {
		if decisionNodes[m.Type()] {
			count++
		}
		for i := 0; i < int(m.NamedChildCount()); i++ {
			walk(m.NamedChild(i))
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i))
	}
	return count
}

var nestingNodes = map[string]bool{
	"if_statement":    true,
	"for_statement":   true,
	"while_statement": true,
	"with_statement":  true,
	"try_statement":   true,
	"match_statement": true,
}

func maxNesting(n *sitter.Node, depth int) int {
	deepest := depth
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		d := depth
		if nestingNodes[child.Type()] {
			d++
		}
		if got := maxNesting(child, d); got > deepest {
			deepest = got
		}
	}
	return deepest
}

// countLines returns total lines and code lines, where a code line is
// neither blank nor comment-only.
func countLines(content string) (total, code int) {
	lines := strings.Split(content, "\n")
	total = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		code++
	}
	return total, code
}

// rankFiles returns the top files by total complexity, ties by path.
func rankFiles(files []FileMetrics) []FileMetrics {
	ranked := make([]FileMetrics, len(files))
	copy(ranked, files)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Complexity != ranked[j].Complexity {
			return ranked[i].Complexity > ranked[j].Complexity
		}
		return ranked[i].Path < ranked[j].Path
	})
	if len(ranked) > mostComplexLimit {
		ranked = ranked[:mostComplexLimit]
	}
	return ranked
}

// rankByComplexity returns the top functions by complexity, ties by
// file then name so the order is stable across runs.
func rankByComplexity(funcs []FunctionMetric) []FunctionMetric {
	ranked := make([]FunctionMetric, len(funcs))
	copy(ranked, funcs)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Complexity != ranked[j].Complexity {
			return ranked[i].Complexity > ranked[j].Complexity
		}
		if ranked[i].File != ranked[j].File {
			return ranked[i].File < ranked[j].File
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > mostComplexLimit {
		ranked = ranked[:mostComplexLimit]
	}
	return ranked
}

// DetectSmells flags functions crossing the structural thresholds.
func DetectSmells(funcs []FunctionMetric) []Smell {
	var smells []Smell
	for _, f := range funcs {
		if f.Lines > longFunctionLines {
			smells = append(smells, Smell{
				File: f.File, Name: f.Name, Kind: "long_function",
				Detail: fmt.Sprintf("%d lines (max %d)", f.Lines, longFunctionLines),
			})
		}
		if f.Complexity > highComplexity {
			smells = append(smells, Smell{
				File: f.File, Name: f.Name, Kind: "high_complexity",
				Detail: fmt.Sprintf("complexity %d (max %d)", f.Complexity, highComplexity),
			})
		}
		if f.Nesting > deepNesting {
			smells = append(smells, Smell{
				File: f.File, Name: f.Name, Kind: "deep_nesting",
				Detail: fmt.Sprintf("nesting depth %d (max %d)", f.Nesting, deepNesting),
			})
		}
	}
	return smells
}
