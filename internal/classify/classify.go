// Package classify produces one style observation per Python source file.
package classify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"genesis/internal/model"
)

// ErrParse marks a file whose source does not parse. Callers must skip
// the file rather than record a zero-filled observation.
var ErrParse = errors.New("source does not parse")

// tagQuery captures declarations and imports. Compiled once and shared;
// compiled queries are safe across goroutines, parsers are not.
const tagQuery = `
(function_definition name: (identifier) @name) @definition.function
(class_definition name: (identifier) @name) @definition.class
(import_statement name: (dotted_name) @name) @reference.import
(import_statement name: (aliased_import name: (dotted_name) @name)) @reference.import
(import_from_statement module_name: (dotted_name) @name) @reference.import
(import_from_statement module_name: (relative_import) @name) @reference.import
`

var (
	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
)

func compiledQuery() (*sitter.Query, error) {
	queryOnce.Do(func() {
		query, queryErr = sitter.NewQuery([]byte(tagQuery), python.GetLanguage())
		if queryErr != nil {
			queryErr = fmt.Errorf("compiling query: %w", queryErr)
		}
	})
	return query, queryErr
}

// Classifier analyzes Python sources. Each goroutine must use its own
// Classifier: the underlying tree-sitter parser is not thread-safe.
type Classifier struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// New creates a Classifier with a fresh parser.
func New() (*Classifier, error) {
	q, err := compiledQuery()
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Classifier{parser: p, query: q}, nil
}

// Classify analyzes one file's source and returns its observation.
// Returns ErrParse when the source does not parse; the file must then
// contribute nothing to any aggregate.
func (c *Classifier) Classify(source []byte) (*model.Observation, error) {
	tree, err := c.parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return nil, ErrParse
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, ErrParse
	}

	obs := &model.Observation{}
	c.collectTags(root, source, obs)

	obs.FunctionConvention = DetectConvention(obs.FunctionNames)
	obs.ClassConvention = DetectConvention(obs.ClassNames)

	content := string(source)
	analyzeIndentation(content, obs)
	obs.DocstringStyle = detectDocstringStyle(content)
	obs.CommentDensity = commentDensity(content)

	return obs, nil
}

func (c *Classifier) collectTags(root *sitter.Node, source []byte, obs *model.Observation) {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(c.query, root)

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var nameNode *sitter.Node
		var captureName string
		for _, cap := range match.Captures {
			switch cname := c.query.CaptureNameForId(cap.Index); cname {
			case "name":
				nameNode = cap.Node
			default:
				captureName = cname
			}
		}
		if nameNode == nil || captureName == "" {
			continue
		}

		text := string(source[nameNode.StartByte():nameNode.EndByte()])
		switch captureName {
		case "definition.function":
			obs.FunctionNames = append(obs.FunctionNames, text)
		case "definition.class":
			obs.ClassNames = append(obs.ClassNames, text)
		case "reference.import":
			categorizeImport(text, &obs.Imports)
		}
	}
}

// categorizeImport files a module path into standard, third-party, or
// local based on its top-level name. Relative imports are local.
func categorizeImport(module string, imp *model.Imports) {
	if strings.HasPrefix(module, ".") {
		imp.Local = append(imp.Local, module)
		return
	}
	top := module
	if dot := strings.Index(module, "."); dot >= 0 {
		top = module[:dot]
	}
	if _, ok := standardLibs[top]; ok {
		imp.Standard = append(imp.Standard, module)
	} else {
		imp.ThirdParty = append(imp.ThirdParty, module)
	}
}

// DetectConvention tallies how many names match each convention and
// returns the most frequent. Exact ties resolve in the fixed order
// snake_case, camelCase, PascalCase, so an all-zero tally (no names)
// yields snake_case.
func DetectConvention(names []string) model.Convention {
	var snake, camel, pascal int
	for _, n := range names {
		switch {
		case isSnakeCase(n):
			snake++
		case isCamelCase(n):
			camel++
		case isPascalCase(n):
			pascal++
		}
	}
	if snake >= camel && snake >= pascal {
		return model.SnakeCase
	}
	if camel >= pascal {
		return model.CamelCase
	}
	return model.PascalCase
}

func isSnakeCase(name string) bool {
	return strings.Contains(name, "_") && name == strings.ToLower(name)
}

func isCamelCase(name string) bool {
	if name == "" || strings.Contains(name, "_") {
		return false
	}
	runes := []rune(name)
	if !unicode.IsLower(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func isPascalCase(name string) bool {
	if name == "" || strings.Contains(name, "_") {
		return false
	}
	return unicode.IsUpper([]rune(name)[0])
}

// analyzeIndentation scans every non-blank line, counting tab- and
// space-indented lines and recording leading-space run lengths.
// IndentWidth is the most frequent run length, ties to the smallest
// value; 0 when no line is space-indented.
func analyzeIndentation(content string, obs *model.Observation) {
	widths := make(map[int]int)

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == 0 {
			continue
		}
		if line[0] == '\t' {
			obs.TabLines++
			continue
		}
		obs.SpaceLines++
		spaces := len(line) - len(strings.TrimLeft(line, " "))
		widths[spaces]++
	}

	obs.IndentUnit = model.Space
	if obs.TabLines > obs.SpaceLines {
		obs.IndentUnit = model.Tab
	}
	obs.IndentWidth = dominantWidth(widths)
}

func dominantWidth(widths map[int]int) int {
	keys := make([]int, 0, len(widths))
	for w := range widths {
		keys = append(keys, w)
	}
	sort.Ints(keys)

	best, bestCount := 0, 0
	for _, w := range keys {
		if widths[w] > bestCount {
			best, bestCount = w, widths[w]
		}
	}
	return best
}

// detectDocstringStyle is a file-level presence test, not scoped to
// docstring positions. A known heuristic approximation.
func detectDocstringStyle(content string) model.DocstringStyle {
	if strings.Contains(content, `"""`) {
		return model.TripleDouble
	}
	if strings.Contains(content, "'''") {
		return model.TripleSingle
	}
	return model.NoDocstring
}

// commentDensity is the ratio of comment-only lines to total lines.
func commentDensity(content string) float64 {
	if content == "" {
		return 0
	}
	lines := strings.Split(content, "\n")
	comments := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			comments++
		}
	}
	return float64(comments) / float64(len(lines))
}
