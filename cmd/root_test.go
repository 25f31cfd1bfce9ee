package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute resets every flag to its default before running, so values
// from a previous test's invocation cannot leak into this one.
func execute(t *testing.T, args ...string) error {
	t.Helper()

	resetFlags()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func TestVersionCommand(t *testing.T) {
	require.NoError(t, execute(t, "version"))
}

func TestGuideBeforeAssimilateFails(t *testing.T) {
	cfgFile := writeTestConfig(t)

	err := execute(t, "guide", "-c", cfgFile)
	assert.ErrorContains(t, err, "run assimilate first")
}

func TestAssimilateThenGuideAndStatus(t *testing.T) {
	repo := t.TempDir()
	source := "def greet(name):\n    return \"hello \" + name\n"
	require.NoError(t, os.WriteFile(filepath.Join(repo, "app.py"), []byte(source), 0o644))
	cfgFile := writeTestConfig(t)

	require.NoError(t, execute(t, "assimilate", "-r", repo, "-c", cfgFile))
	require.NoError(t, execute(t, "guide", "-c", cfgFile))
	require.NoError(t, execute(t, "status", "-c", cfgFile))
	require.NoError(t, execute(t, "clear", "-c", cfgFile))
}

func TestAnalyzeAndScanCommands(t *testing.T) {
	repo := t.TempDir()
	source := "import hashlib\n\n\ndef digest(data):\n    return hashlib.md5(data)\n"
	require.NoError(t, os.WriteFile(filepath.Join(repo, "app.py"), []byte(source), 0o644))
	cfgFile := writeTestConfig(t)
	out := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, execute(t, "analyze", "-r", repo, "-c", cfgFile, "-o", out))
	assert.FileExists(t, out)

	require.NoError(t, execute(t, "scan", "-r", repo, "-c", cfgFile))
}

func TestSearchCommands(t *testing.T) {
	repo := t.TempDir()
	source := "def load_config(path):\n    return open(path).read()\n\n\nclass Loader:\n    pass\n"
	require.NoError(t, os.WriteFile(filepath.Join(repo, "app.py"), []byte(source), 0o644))
	cfgFile := writeTestConfig(t)

	// Semantic search needs an index.
	err := execute(t, "search", "config", "-c", cfgFile)
	assert.ErrorContains(t, err, "run 'genesis assimilate' first")

	require.NoError(t, execute(t, "assimilate", "-r", repo, "-c", cfgFile))
	require.NoError(t, execute(t, "search", "config", "-c", cfgFile))

	require.NoError(t, execute(t, "search", "open", "--grep", "-r", repo, "-c", cfgFile))
	require.NoError(t, execute(t, "search", "load_config", "--function", "-r", repo, "-c", cfgFile))
	require.NoError(t, execute(t, "search", "Loader", "--class", "-r", repo, "-c", cfgFile))
}

func TestRefactorCommand(t *testing.T) {
	cfgFile := writeTestConfig(t)
	source := "def flat(x):\n    return x\n"
	path := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	require.NoError(t, execute(t, "refactor", path, "-c", cfgFile))

	err := execute(t, "refactor", "--apply", "-c", cfgFile)
	assert.ErrorContains(t, err, "needs a file argument")
}

func TestDocsCommand(t *testing.T) {
	repo := t.TempDir()
	source := "def greet(name):\n    \"\"\"Say hello.\"\"\"\n    return name\n"
	require.NoError(t, os.WriteFile(filepath.Join(repo, "app.py"), []byte(source), 0o644))
	cfgFile := writeTestConfig(t)
	outDir := filepath.Join(t.TempDir(), "docs")

	require.NoError(t, execute(t, "docs", "-r", repo, "-c", cfgFile, "-o", outDir))
	assert.FileExists(t, filepath.Join(outDir, "API.md"))
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	repo := t.TempDir()
	source := "def digest(data):\n    return data\n"
	require.NoError(t, os.WriteFile(filepath.Join(repo, "app.py"), []byte(source), 0o644))
	cfgFile := writeTestConfig(t)
	out := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, execute(t, "analyze", "-r", repo, "-c", cfgFile, "-o", out))
	require.Equal(t, out, analyzeOutput)

	resetFlags()
	assert.Empty(t, analyzeOutput)
	assert.Empty(t, analyzeRepoPath)
	assert.Empty(t, cfgPath)
}

// writeTestConfig points the index at a per-test directory so tests do
// not touch the working tree.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	indexDir := filepath.Join(t.TempDir(), "index")
	content := "index:\n  persist_directory: " + indexDir + "\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
