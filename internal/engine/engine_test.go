package engine

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genesis/internal/config"
	"genesis/internal/llm"
	"genesis/internal/model"
)

func TestAssimilatePersistsSystemMap(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "app.py", "def main():\n    pass\n")
	cfg := testConfig(t, repo, false)

	e := New(cfg, nil, io.Discard, io.Discard)
	result, err := e.Assimilate(repo)
	require.NoError(t, err)

	// Whole-file chunk plus the main definition.
	assert.Equal(t, 2, result.Chunks)
	assert.Equal(t, 1, result.SystemMap.Fingerprint.FilesAnalyzed)

	data, err := os.ReadFile(filepath.Join(cfg.IndexDir(), "system_map.json"))
	require.NoError(t, err)

	var persisted model.SystemMap
	require.NoError(t, json.Unmarshal(data, &persisted))
	abs, _ := filepath.Abs(repo)
	assert.Equal(t, abs, persisted.RepoPath)
	assert.Equal(t, 1, persisted.Fingerprint.FilesAnalyzed)

	assert.FileExists(t, filepath.Join(cfg.IndexDir(), "chunks.json"))
}

func TestStyleGuideRequiresSystemMap(t *testing.T) {
	cfg := testConfig(t, t.TempDir(), false)

	e := New(cfg, nil, io.Discard, io.Discard)
	_, err := e.StyleGuide()
	assert.ErrorContains(t, err, "run assimilate first")
}

func TestStyleGuideAfterAssimilate(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "app.py", "def main():\n    pass\n")
	cfg := testConfig(t, repo, false)

	e := New(cfg, nil, io.Discard, io.Discard)
	_, err := e.Assimilate(repo)
	require.NoError(t, err)

	text, err := e.StyleGuide()
	require.NoError(t, err)
	assert.Contains(t, text, "Code Style Guide")
	assert.Contains(t, text, "snake_case")
}

func TestGenerateWritesBlueprintFiles(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "app.py", "def main():\n    pass\n")
	cfg := testConfig(t, repo, false)

	blueprint := "```json\n" + `{
  "files": [
    {
      "path": "hello.py",
      "action": "create",
      "description": "Greets the user",
      "pseudocode": "def hello(): print"
    }
  ],
  "summary": "add a greeting"
}` + "\n```"

	fake := &llm.Fake{Responses: []string{
		blueprint,
		"```python\ndef hello():\n    print(\"hi\")\n```",
	}}
	e := New(cfg, fake, io.Discard, io.Discard)
	_, err := e.Assimilate(repo)
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "out")
	result, err := e.Generate(context.Background(), "add a greeting", outDir)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, "add a greeting", result.Blueprint.Summary)

	code, err := os.ReadFile(filepath.Join(outDir, "hello.py"))
	require.NoError(t, err)
	assert.Equal(t, "def hello():\n    print(\"hi\")", string(code))

	// The planning prompt carries the style guide and retrieved context.
	require.Len(t, fake.Prompts, 2)
	assert.Contains(t, fake.Prompts[0], "add a greeting")
}

func TestGenerateFallbackBlueprint(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "app.py", "def main():\n    pass\n")
	cfg := testConfig(t, repo, false)

	fake := &llm.Fake{Responses: []string{
		"I could not produce JSON, here is prose instead.",
		"def fallback():\n    pass",
	}}
	e := New(cfg, fake, io.Discard, io.Discard)
	_, err := e.Assimilate(repo)
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "out")
	result, err := e.Generate(context.Background(), "do something", outDir)
	require.NoError(t, err)

	require.Len(t, result.Blueprint.Files, 1)
	assert.Equal(t, "generated_code.py", result.Blueprint.Files[0].Path)
	assert.Equal(t, "do something", result.Blueprint.Summary)
	assert.FileExists(t, filepath.Join(outDir, "generated_code.py"))
}

func TestGenerateAutoTests(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "app.py", "def main():\n    pass\n")
	cfg := testConfig(t, repo, true)

	blueprint := `{"files": [{"path": "hello.py", "action": "create", "description": "greet"}], "summary": "s"}`
	fake := &llm.Fake{Responses: []string{
		blueprint,
		"def hello():\n    pass",
		"def test_hello():\n    assert True",
	}}
	e := New(cfg, fake, io.Discard, io.Discard)
	_, err := e.Assimilate(repo)
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "out")
	result, err := e.Generate(context.Background(), "greet", outDir)
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.FileExists(t, filepath.Join(outDir, "tests", "test_hello.py"))
}

func TestGenerateAssimilatesWhenMapMissing(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "app.py", "def main():\n    pass\n")
	cfg := testConfig(t, repo, false)

	fake := &llm.Fake{Responses: []string{
		`{"files": [], "summary": "nothing to do"}`,
	}}
	var stderr strings.Builder
	e := New(cfg, fake, io.Discard, &stderr)

	_, err := e.Generate(context.Background(), "noop", filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	assert.Contains(t, stderr.String(), "system map not found")
	assert.FileExists(t, filepath.Join(cfg.IndexDir(), "system_map.json"))
}

func TestGenerateRequiresClient(t *testing.T) {
	cfg := testConfig(t, t.TempDir(), false)

	e := New(cfg, nil, io.Discard, io.Discard)
	_, err := e.Generate(context.Background(), "anything", "")
	assert.ErrorIs(t, err, ErrNoClient)
}

func TestClearIndex(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "app.py", "def main():\n    pass\n")
	cfg := testConfig(t, repo, false)

	e := New(cfg, nil, io.Discard, io.Discard)
	_, err := e.Assimilate(repo)
	require.NoError(t, err)

	require.NoError(t, e.ClearIndex())
	assert.NoFileExists(t, filepath.Join(cfg.IndexDir(), "system_map.json"))
	assert.NoFileExists(t, filepath.Join(cfg.IndexDir(), "chunks.json"))

	// Clearing twice is not an error.
	require.NoError(t, e.ClearIndex())
}

func TestStatus(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "app.py", "def main():\n    pass\n")
	cfg := testConfig(t, repo, false)
	t.Setenv("GENESIS_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	e := New(cfg, nil, io.Discard, io.Discard)

	status, err := e.Status()
	require.NoError(t, err)
	assert.Nil(t, status.SystemMap)
	assert.Equal(t, 0, status.Chunks)
	assert.False(t, status.HasAPIKey)

	_, err = e.Assimilate(repo)
	require.NoError(t, err)
	t.Setenv("GENESIS_LLM_API_KEY", "key")

	status, err = e.Status()
	require.NoError(t, err)
	require.NotNil(t, status.SystemMap)
	assert.Equal(t, 2, status.Chunks)
	assert.True(t, status.HasAPIKey)
}

// testConfig writes a config file pointing at its own temp index dir.
func testConfig(t *testing.T, repo string, autoTest bool) *config.Config {
	t.Helper()

	indexDir := filepath.Join(t.TempDir(), "index")
	content := "repository:\n  path: " + repo + "\nindex:\n  persist_directory: " + indexDir + "\n"
	if !autoTest {
		content += "generation:\n  auto_test: false\n"
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
