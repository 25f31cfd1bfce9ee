// Package guide renders a style profile as the text block handed to
// generation prompts.
package guide

import (
	"fmt"
	"strings"

	"genesis/internal/model"
)

// renderedImportLimit caps the common-imports section regardless of how
// many entries the profile retained.
const renderedImportLimit = 5

// Render serializes a profile into the style guide text. The output is
// deterministic with a fixed section order; it is read by humans and
// language models, never parsed back.
func Render(p model.Profile) string {
	var b strings.Builder

	b.WriteString("Code Style Guide (Generated from Codebase Analysis):\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n")

	fmt.Fprintf(&b, "\nIndentation:\n")
	fmt.Fprintf(&b, "  - Use: %s\n", p.Indentation.Preference)
	fmt.Fprintf(&b, "  - Size: %d\n", p.Indentation.IndentSize)

	fmt.Fprintf(&b, "\nNaming Conventions:\n")
	fmt.Fprintf(&b, "  - Functions: %s\n", p.Naming.Functions)
	fmt.Fprintf(&b, "  - Classes: %s\n", p.Naming.Classes)
	fmt.Fprintf(&b, "  - Variables: %s\n", p.Naming.Variables)

	fmt.Fprintf(&b, "\nComments:\n")
	fmt.Fprintf(&b, "  - Docstring style: %s\n", p.Comments.DocstringStyle)

	fmt.Fprintf(&b, "\nCommon Imports:\n")
	common := p.Imports.CommonThirdParty
	if len(common) > renderedImportLimit {
		common = common[:renderedImportLimit]
	}
	for _, imp := range common {
		fmt.Fprintf(&b, "  - %s\n", imp)
	}

	return strings.TrimRight(b.String(), "\n")
}
