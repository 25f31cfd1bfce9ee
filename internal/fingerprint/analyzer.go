package fingerprint

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"genesis/internal/classify"
	"genesis/internal/discover"
	"genesis/internal/model"
)

// Analyzer drives the fingerprinting run: discover files, classify each
// one, aggregate the survivors. Per-file parse and read failures are
// warned about and skipped; they never abort the run.
type Analyzer struct {
	ignorePatterns []string
	stderr         io.Writer
}

// NewAnalyzer creates an Analyzer. stderr receives per-file warnings
// and the run summary; pass io.Discard to silence it.
func NewAnalyzer(ignorePatterns []string, stderr io.Writer) *Analyzer {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Analyzer{ignorePatterns: ignorePatterns, stderr: stderr}
}

// AnalyzeRepository builds the style profile of the repository at root.
// An empty repository is not an error: it yields the default profile
// with FilesAnalyzed == 0.
func (a *Analyzer) AnalyzeRepository(root string) (model.Profile, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return model.Profile{}, fmt.Errorf("resolving root: %w", err)
	}

	files, err := discover.Files(root, a.ignorePatterns)
	if err != nil {
		return model.Profile{}, fmt.Errorf("discovering files: %w", err)
	}

	obs := a.classifyConcurrent(root, files)
	profile := Aggregate(obs)

	_, _ = fmt.Fprintf(a.stderr, "Analyzed %d of %d files (%d skipped)\n",
		len(obs), len(files), len(files)-len(obs))

	return profile, nil
}

// classifyConcurrent maps the classifier over files with a worker pool.
// Classification of one file never depends on another, and the
// reduction over the results is commutative, so parallelism cannot
// change the profile. Results are still collected in input order.
func (a *Analyzer) classifyConcurrent(root string, files []string) []model.Observation {
	type result struct {
		index int
		obs   *model.Observation
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}
	if numWorkers == 0 {
		return nil
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup
	var stderrMu sync.Mutex

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own classifier (parser is not
			// thread-safe).
			c, err := classify.New()
			if err != nil {
				stderrMu.Lock()
				_, _ = fmt.Fprintf(a.stderr, "Warning: classifier init failed: %v\n", err)
				stderrMu.Unlock()
				return
			}

			for idx := range work {
				path := files[idx]
				source, err := os.ReadFile(filepath.Join(root, path))
				if err != nil {
					stderrMu.Lock()
					_, _ = fmt.Fprintf(a.stderr, "Warning: could not read %s: %v\n", path, err)
					stderrMu.Unlock()
					continue
				}

				obs, err := c.Classify(source)
				if err != nil {
					stderrMu.Lock()
					_, _ = fmt.Fprintf(a.stderr, "Warning: could not analyze %s: %v\n", path, err)
					stderrMu.Unlock()
					continue
				}

				results <- result{index: idx, obs: obs}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]*model.Observation, len(files))
	for r := range results {
		indexed[r.index] = r.obs
	}

	var obs []model.Observation
	for _, o := range indexed {
		if o != nil {
			obs = append(obs, *o)
		}
	}
	return obs
}
