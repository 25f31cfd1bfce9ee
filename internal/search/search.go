// Package search finds code by pattern or by definition name. Semantic
// lookups go through the persisted index; this package covers the
// exact-match side.
package search

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"genesis/internal/classify"
	"genesis/internal/discover"
)

// Match is one grep hit.
type Match struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
	Match   string `json:"match"`
}

// Definition locates a named function or class.
type Definition struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Grep scans every Python file under root for the case-insensitive
// pattern, line by line. Unreadable files are skipped with a warning.
func Grep(root, pattern string, ignorePatterns []string, stderr io.Writer) ([]Match, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	files, err := discover.Files(root, ignorePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	var matches []Match
	for _, rel := range files {
		f, err := os.Open(filepath.Join(root, rel))
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not read %s: %v\n", rel, err)
			continue
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			text := scanner.Text()
			if re.MatchString(text) {
				matches = append(matches, Match{
					File:    rel,
					Line:    line,
					Content: strings.TrimSpace(text),
					Match:   re.FindString(text),
				})
			}
		}
		f.Close()
	}
	return matches, nil
}

// FindDefinitions returns every function or class definition whose
// name matches exactly. Kind narrows the search to "function" or
// "class"; empty matches both. Unparseable files are skipped with a
// warning.
func FindDefinitions(root, name, kind string, ignorePatterns []string, stderr io.Writer) ([]Definition, error) {
	files, err := discover.Files(root, ignorePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	classifier, err := classify.New()
	if err != nil {
		return nil, err
	}

	var found []Definition
	for _, rel := range files {
		source, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not read %s: %v\n", rel, err)
			continue
		}

		defs, err := classifier.Definitions(source)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not search %s: %v\n", rel, err)
			continue
		}

		for _, d := range defs {
			if d.Name != name {
				continue
			}
			if kind != "" && d.Kind != kind {
				continue
			}
			found = append(found, Definition{File: rel, Line: d.StartLine, Name: d.Name, Kind: d.Kind})
		}
	}
	return found, nil
}
