package index

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"genesis/internal/classify"
	"genesis/internal/discover"
)

// BuildFromRepo indexes every Python file under root: one chunk for
// the whole file plus one per function and class definition. Files
// that cannot be read or parsed are skipped with a warning on stderr.
func BuildFromRepo(root string, ignorePatterns []string, stderr io.Writer) (*Index, error) {
	files, err := discover.Files(root, ignorePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	classifier, err := classify.New()
	if err != nil {
		return nil, err
	}

	x := New()
	for _, rel := range files {
		source, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not read %s: %v\n", rel, err)
			continue
		}

		defs, err := classifier.Definitions(source)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not index %s: %v\n", rel, err)
			continue
		}

		x.Add(rel+"::full", string(source), map[string]string{
			"file": rel,
			"type": "full_file",
		})
		for _, d := range defs {
			x.Add(fmt.Sprintf("%s::%s::%s", rel, d.Kind, d.Name), d.Text, map[string]string{
				"file": rel,
				"type": d.Kind,
				"name": d.Name,
			})
		}
	}
	return x, nil
}
