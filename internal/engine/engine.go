// Package engine orchestrates the three phases: assimilation builds
// the system map, planning turns a request into a blueprint, and
// weaving generates the files the blueprint names.
package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"genesis/internal/config"
	"genesis/internal/fingerprint"
	"genesis/internal/guide"
	"genesis/internal/index"
	"genesis/internal/llm"
	"genesis/internal/model"
)

// Engine ties the phases together. The llm client may be nil for
// operations that never call the model (assimilate, guide, clear).
type Engine struct {
	cfg    *config.Config
	llm    llm.Client
	stdout io.Writer
	stderr io.Writer
}

// New creates an Engine writing progress to stdout and warnings to
// stderr.
func New(cfg *config.Config, client llm.Client, stdout, stderr io.Writer) *Engine {
	return &Engine{cfg: cfg, llm: client, stdout: stdout, stderr: stderr}
}

// AssimilateResult reports what assimilation produced.
type AssimilateResult struct {
	SystemMap model.SystemMap
	Chunks    int
}

// Assimilate fingerprints the repository, builds the search index, and
// persists the system map. An empty repoPath falls back to the
// configured repository path.
func (e *Engine) Assimilate(repoPath string) (*AssimilateResult, error) {
	if repoPath == "" {
		repoPath = e.cfg.RepoPath()
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", repoPath, err)
	}

	fmt.Fprintln(e.stdout, "Phase 1: assimilation")

	fmt.Fprintln(e.stdout, "[1/2] Building style fingerprint...")
	analyzer := fingerprint.NewAnalyzer(e.cfg.IgnorePatterns(), e.stderr)
	profile, err := analyzer.AnalyzeRepository(abs)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(e.stdout, "[2/2] Building search index...")
	idx, err := index.BuildFromRepo(abs, e.cfg.IgnorePatterns(), e.stderr)
	if err != nil {
		return nil, err
	}
	if err := idx.Save(e.cfg.IndexDir()); err != nil {
		return nil, err
	}

	systemMap := model.SystemMap{RepoPath: abs, Fingerprint: profile}
	if err := e.saveSystemMap(systemMap); err != nil {
		return nil, err
	}

	fmt.Fprintf(e.stdout, "Assimilation complete: %d files analyzed, %d chunks indexed\n",
		profile.FilesAnalyzed, idx.Len())

	return &AssimilateResult{SystemMap: systemMap, Chunks: idx.Len()}, nil
}

// StyleGuide renders the persisted fingerprint. Fails when no system
// map exists yet.
func (e *Engine) StyleGuide() (string, error) {
	systemMap, err := e.loadSystemMap()
	if err != nil {
		return "", err
	}
	if systemMap == nil {
		return "", fmt.Errorf("no system map at %s; run assimilate first", e.systemMapPath())
	}
	return guide.Render(systemMap.Fingerprint), nil
}

// Status reports what is currently persisted. SystemMap is nil when
// assimilation has not run yet.
type Status struct {
	SystemMap *model.SystemMap
	Chunks    int
	HasAPIKey bool
}

// Status inspects the persisted system map and index.
func (e *Engine) Status() (*Status, error) {
	systemMap, err := e.loadSystemMap()
	if err != nil {
		return nil, err
	}
	idx, err := index.Load(e.cfg.IndexDir())
	if err != nil {
		return nil, err
	}
	return &Status{
		SystemMap: systemMap,
		Chunks:    idx.Len(),
		HasAPIKey: e.cfg.APIKey() != "",
	}, nil
}

// ClearIndex removes the search index and the system map.
func (e *Engine) ClearIndex() error {
	if err := index.Clear(e.cfg.IndexDir()); err != nil {
		return err
	}
	if err := os.Remove(e.systemMapPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing system map: %w", err)
	}
	fmt.Fprintln(e.stdout, "Index cleared")
	return nil
}

func (e *Engine) systemMapPath() string {
	return filepath.Join(e.cfg.IndexDir(), "system_map.json")
}

func (e *Engine) saveSystemMap(systemMap model.SystemMap) error {
	if err := os.MkdirAll(e.cfg.IndexDir(), 0o755); err != nil {
		return fmt.Errorf("creating index dir: %w", err)
	}
	data, err := json.MarshalIndent(systemMap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding system map: %w", err)
	}
	if err := os.WriteFile(e.systemMapPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing system map: %w", err)
	}
	return nil
}

// loadSystemMap returns nil without error when no map is persisted.
func (e *Engine) loadSystemMap() (*model.SystemMap, error) {
	data, err := os.ReadFile(e.systemMapPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading system map: %w", err)
	}
	var systemMap model.SystemMap
	if err := json.Unmarshal(data, &systemMap); err != nil {
		return nil, fmt.Errorf("decoding system map: %w", err)
	}
	return &systemMap, nil
}
