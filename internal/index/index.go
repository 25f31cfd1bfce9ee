/*
Package index is a lightweight lexical search index over code chunks.

It stands behind the same contract as an embedding-backed store —
add chunks, query for the k best matches — but ranks by ident-token
overlap, so it needs no model and no external service.

Rules:
- Tokens are words: start with a letter, continue with letters or
  digits. Underscores split, so snake_case identifiers match their
  parts. Everything else is a delimiter.
- Matching is case-insensitive.
- Scores are the fraction of distinct query tokens present in a chunk;
  ties rank by chunk ID for a deterministic order.
*/
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Chunk is one indexed document with its metadata.
type Chunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result pairs a matched chunk with its relevance score in (0, 1].
type Result struct {
	Chunk Chunk
	Score float64
}

// Index holds chunks and a token posting map.
type Index struct {
	chunks []Chunk
	post   map[string]map[int]struct{} // token -> chunk positions
}

// New returns an empty index.
func New() *Index {
	return &Index{post: make(map[string]map[int]struct{})}
}

// Add indexes one chunk. Re-adding an ID does not replace the old
// chunk; callers rebuild the index instead of mutating it.
func (x *Index) Add(id, text string, metadata map[string]string) {
	pos := len(x.chunks)
	x.chunks = append(x.chunks, Chunk{ID: id, Text: text, Metadata: metadata})
	for _, tok := range tokenize(text) {
		set, ok := x.post[tok]
		if !ok {
			set = make(map[int]struct{})
			x.post[tok] = set
		}
		set[pos] = struct{}{}
	}
}

// Len reports the number of indexed chunks.
func (x *Index) Len() int {
	return len(x.chunks)
}

// Search returns up to k chunks ranked by query-token overlap.
// Chunks matching no token are omitted.
func (x *Index) Search(query string, k int) []Result {
	tokens := distinct(tokenize(query))
	if len(tokens) == 0 || k <= 0 {
		return nil
	}

	hits := make(map[int]int)
	for _, tok := range tokens {
		for pos := range x.post[tok] {
			hits[pos]++
		}
	}
	if len(hits) == 0 {
		return nil
	}

	results := make([]Result, 0, len(hits))
	for pos, matched := range hits {
		results = append(results, Result{
			Chunk: x.chunks[pos],
			Score: float64(matched) / float64(len(tokens)),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Save writes the index chunks as JSON under dir.
func (x *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index dir: %w", err)
	}
	data, err := json.MarshalIndent(x.chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	path := filepath.Join(dir, "chunks.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Load reads a previously saved index from dir. A missing file yields
// an empty index.
func Load(dir string) (*Index, error) {
	path := filepath.Join(dir, "chunks.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	x := New()
	for _, c := range chunks {
		x.Add(c.ID, c.Text, c.Metadata)
	}
	return x, nil
}

// Clear removes the persisted index file under dir.
func Clear(dir string) error {
	path := filepath.Join(dir, "chunks.json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			current.WriteRune(r)
		case unicode.IsDigit(r) && current.Len() > 0:
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func distinct(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
