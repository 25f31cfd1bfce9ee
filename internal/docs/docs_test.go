package docs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genesis/internal/llm"
	"genesis/internal/model"
)

const sampleSource = `"""User helpers."""


def load_user(uid):
    """Fetch one user by id."""
    return db.get(uid)


class UserStore:
    """Persistence for users."""

    def save(self, user):
        pass

    def delete(self, uid):
        pass
`

func TestBuild(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "users.py"), []byte(sampleSource), 0o644))

	modules, err := Build(root, nil, io.Discard)
	require.NoError(t, err)
	require.Len(t, modules, 1)

	m := modules[0]
	assert.Equal(t, "users.py", m.File)

	// Every function appears, methods included.
	names := make([]string, len(m.Functions))
	for i, f := range m.Functions {
		names[i] = f.Name
	}
	assert.ElementsMatch(t, []string{"load_user", "save", "delete"}, names)

	require.Len(t, m.Classes, 1)
	assert.Equal(t, "UserStore", m.Classes[0].Name)
	assert.Equal(t, []string{"save", "delete"}, m.Classes[0].Methods)
	assert.Equal(t, "Persistence for users.", m.Classes[0].Docstring)

	for _, f := range m.Functions {
		if f.Name == "load_user" {
			assert.Equal(t, "Fetch one user by id.", f.Docstring)
		}
	}
}

func TestBuildSkipsUnparseable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "good.py"), []byte("def ok():\n    pass\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.py"), []byte("def broken(:\n"), 0o644))

	var warnings strings.Builder
	modules, err := Build(root, nil, &warnings)
	require.NoError(t, err)

	require.Len(t, modules, 1)
	assert.Contains(t, warnings.String(), "broken.py")
}

func TestMarkdown(t *testing.T) {
	modules := []Module{{
		File: "users.py",
		Functions: []FunctionDoc{
			{Name: "load_user", Line: 4, Docstring: "Fetch one user by id."},
		},
		Classes: []ClassDoc{
			{Name: "UserStore", Line: 9, Methods: []string{"save"}},
		},
	}}

	out := Markdown(modules)
	assert.Contains(t, out, "# API Documentation")
	assert.Contains(t, out, "## users.py")
	assert.Contains(t, out, "#### UserStore (line 9)")
	assert.Contains(t, out, "**Methods:** save")
	assert.Contains(t, out, "#### load_user (line 4)")
	assert.Contains(t, out, "Fetch one user by id.")

	// Classes render before functions.
	assert.Less(t, strings.Index(out, "### Classes"), strings.Index(out, "### Functions"))
}

func TestWriteAPIDocs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "users.py"), []byte(sampleSource), 0o644))

	outDir := filepath.Join(t.TempDir(), "docs")
	target, documented, err := WriteAPIDocs(root, nil, outDir, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "API.md"), target)
	assert.Equal(t, 1, documented)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "UserStore")
}

func TestReadme(t *testing.T) {
	fake := &llm.Fake{Responses: []string{"```markdown\n# My Project\n```"}}

	readme, err := Readme(context.Background(), fake, 12, 340, []string{"requests", "numpy"})
	require.NoError(t, err)

	assert.Equal(t, "# My Project", readme)
	require.Len(t, fake.Prompts, 1)
	assert.Contains(t, fake.Prompts[0], "requests, numpy")
}

func TestDocstringQuoteStyle(t *testing.T) {
	fake := &llm.Fake{Responses: []string{"Does the thing.", "Does the thing."}}

	double, err := Docstring(context.Background(), fake, "def f():\n    pass", model.TripleDouble)
	require.NoError(t, err)
	assert.Equal(t, "\"\"\"\nDoes the thing.\n\"\"\"", double)

	single, err := Docstring(context.Background(), fake, "def f():\n    pass", model.TripleSingle)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(single, "'''"))
}
