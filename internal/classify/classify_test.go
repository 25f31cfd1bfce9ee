package classify

import (
	"errors"
	"testing"

	"genesis/internal/model"
)

func mustClassify(t *testing.T, source string) *model.Observation {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	obs, err := c.Classify([]byte(source))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return obs
}

func TestClassifyBasic(t *testing.T) {
	t.Parallel()

	src := "import os\n" +
		"import requests\n" +
		"from . import helpers\n" +
		"\n" +
		"# comment\n" +
		"def get_user():\n" +
		"    \"\"\"Fetch a user.\"\"\"\n" +
		"    return 1\n" +
		"\n" +
		"class UserStore:\n" +
		"    pass\n"

	obs := mustClassify(t, src)

	if obs.IndentUnit != model.Space {
		t.Errorf("IndentUnit = %v, want spaces", obs.IndentUnit)
	}
	if obs.IndentWidth != 4 {
		t.Errorf("IndentWidth = %d, want 4", obs.IndentWidth)
	}
	if obs.SpaceLines != 3 || obs.TabLines != 0 {
		t.Errorf("SpaceLines/TabLines = %d/%d, want 3/0", obs.SpaceLines, obs.TabLines)
	}
	if len(obs.FunctionNames) != 1 || obs.FunctionNames[0] != "get_user" {
		t.Errorf("FunctionNames = %v", obs.FunctionNames)
	}
	if len(obs.ClassNames) != 1 || obs.ClassNames[0] != "UserStore" {
		t.Errorf("ClassNames = %v", obs.ClassNames)
	}
	if obs.FunctionConvention != model.SnakeCase {
		t.Errorf("FunctionConvention = %v, want snake_case", obs.FunctionConvention)
	}
	if obs.ClassConvention != model.PascalCase {
		t.Errorf("ClassConvention = %v, want PascalCase", obs.ClassConvention)
	}
	if obs.DocstringStyle != model.TripleDouble {
		t.Errorf("DocstringStyle = %v, want triple_double", obs.DocstringStyle)
	}
	// One comment-only line out of 12 (the trailing newline yields an
	// empty final line).
	want := 1.0 / 12.0
	if obs.CommentDensity != want {
		t.Errorf("CommentDensity = %v, want %v", obs.CommentDensity, want)
	}
}

func TestClassifyImports(t *testing.T) {
	t.Parallel()

	src := "import os.path\n" +
		"import numpy as np\n" +
		"from collections import OrderedDict\n" +
		"from .local_module import thing\n"

	obs := mustClassify(t, src)

	if len(obs.Imports.Standard) != 2 {
		t.Errorf("Standard = %v, want [os.path collections]", obs.Imports.Standard)
	}
	if len(obs.Imports.ThirdParty) != 1 || obs.Imports.ThirdParty[0] != "numpy" {
		t.Errorf("ThirdParty = %v, want [numpy]", obs.Imports.ThirdParty)
	}
	if len(obs.Imports.Local) != 1 {
		t.Errorf("Local = %v, want one relative import", obs.Imports.Local)
	}
}

func TestClassifyTabs(t *testing.T) {
	t.Parallel()

	src := "def main():\n\treturn 1\n"
	obs := mustClassify(t, src)

	if obs.IndentUnit != model.Tab {
		t.Errorf("IndentUnit = %v, want tabs", obs.IndentUnit)
	}
	if obs.TabLines != 1 || obs.SpaceLines != 0 {
		t.Errorf("TabLines/SpaceLines = %d/%d, want 1/0", obs.TabLines, obs.SpaceLines)
	}
	if obs.IndentWidth != 0 {
		t.Errorf("IndentWidth = %d, want 0 (unreported)", obs.IndentWidth)
	}
}

func TestClassifyParseFailure(t *testing.T) {
	t.Parallel()

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Classify([]byte("def broken(:\n    pass\n"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Classify = %v, want ErrParse", err)
	}
}

func TestClassifyNamingTie(t *testing.T) {
	t.Parallel()

	src := "def get_user():\n    pass\n\ndef getUser():\n    pass\n"
	obs := mustClassify(t, src)

	if obs.FunctionConvention != model.SnakeCase {
		t.Errorf("FunctionConvention = %v, want snake_case on exact tie", obs.FunctionConvention)
	}
}

func TestDetectConvention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		names []string
		want  model.Convention
	}{
		{"empty", nil, model.SnakeCase},
		{"snake majority", []string{"get_user", "set_user", "getUser"}, model.SnakeCase},
		{"camel majority", []string{"getUser", "setUser", "get_user"}, model.CamelCase},
		{"pascal majority", []string{"UserStore", "HttpClient"}, model.PascalCase},
		{"snake camel tie", []string{"get_user", "getUser"}, model.SnakeCase},
		{"camel pascal tie", []string{"getUser", "UserStore"}, model.CamelCase},
		{"no match", []string{"main", "run"}, model.SnakeCase},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DetectConvention(tt.names); got != tt.want {
				t.Errorf("DetectConvention(%v) = %v, want %v", tt.names, got, tt.want)
			}
		})
	}
}

func TestDominantWidthTieBreak(t *testing.T) {
	t.Parallel()

	// Two lines at width 2, two at width 4: tie resolves to smallest.
	src := "def f():\n" +
		"  a = 1\n" +
		"  b = 2\n" +
		"\n" +
		"def g():\n" +
		"    c = 3\n" +
		"    d = 4\n"
	obs := mustClassify(t, src)

	if obs.IndentWidth != 2 {
		t.Errorf("IndentWidth = %d, want 2 (smallest on tie)", obs.IndentWidth)
	}
}

func TestDocstringStyles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want model.DocstringStyle
	}{
		{"double", "def f():\n    \"\"\"doc\"\"\"\n    pass\n", model.TripleDouble},
		{"single", "def f():\n    '''doc'''\n    pass\n", model.TripleSingle},
		{"none", "def f():\n    pass\n", model.NoDocstring},
		{"double wins over single", "'''a'''\n\"\"\"b\"\"\"\n", model.TripleDouble},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			obs := mustClassify(t, tt.src)
			if obs.DocstringStyle != tt.want {
				t.Errorf("DocstringStyle = %v, want %v", obs.DocstringStyle, tt.want)
			}
		})
	}
}
