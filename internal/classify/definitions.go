package classify

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Definition is one named top-level or nested declaration with its
// source text and line span.
type Definition struct {
	Name      string
	Kind      string // "function" or "class"
	Text      string
	StartLine int // 1-based, inclusive
	EndLine   int
}

// Definitions extracts every function and class definition from source.
// Returns ErrParse under the same conditions as Classify.
func (c *Classifier) Definitions(source []byte) ([]Definition, error) {
	tree, err := c.parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return nil, ErrParse
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, ErrParse
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(c.query, root)

	var defs []Definition
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var nameNode, defNode *sitter.Node
		var kind string
		for _, cap := range match.Captures {
			switch cname := c.query.CaptureNameForId(cap.Index); cname {
			case "name":
				nameNode = cap.Node
			case "definition.function":
				defNode, kind = cap.Node, "function"
			case "definition.class":
				defNode, kind = cap.Node, "class"
			}
		}
		if nameNode == nil || defNode == nil {
			continue
		}

		defs = append(defs, Definition{
			Name:      string(source[nameNode.StartByte():nameNode.EndByte()]),
			Kind:      kind,
			Text:      string(source[defNode.StartByte():defNode.EndByte()]),
			StartLine: int(defNode.StartPoint().Row) + 1,
			EndLine:   int(defNode.EndPoint().Row) + 1,
		})
	}
	return defs, nil
}
