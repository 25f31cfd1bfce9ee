// Package model defines core data structures for genesis.
package model

// IndentUnit is the dominant indent character of a file.
type IndentUnit string

const (
	Tab   IndentUnit = "tabs"
	Space IndentUnit = "spaces"
)

// Convention is a naming convention verdict.
type Convention string

const (
	SnakeCase  Convention = "snake_case"
	CamelCase  Convention = "camelCase"
	PascalCase Convention = "PascalCase"
)

// DocstringStyle is the quoting style of docstrings observed in a file.
type DocstringStyle string

const (
	TripleDouble DocstringStyle = "triple_double"
	TripleSingle DocstringStyle = "triple_single"
	NoDocstring  DocstringStyle = "none"
)

// Imports partitions the imported module paths of one file by origin.
type Imports struct {
	Standard   []string
	ThirdParty []string
	Local      []string
}

// Observation is the per-file style analysis result. Observations are
// ephemeral: they exist only between classification and aggregation.
type Observation struct {
	IndentUnit IndentUnit
	// IndentWidth is the dominant leading-space run length of
	// space-indented lines, or 0 when the file has none.
	IndentWidth int
	TabLines    int
	SpaceLines  int

	FunctionNames []string
	ClassNames    []string

	FunctionConvention Convention
	ClassConvention    Convention

	DocstringStyle DocstringStyle
	CommentDensity float64

	Imports Imports
}

// Indentation is the repository-wide indentation consensus.
type Indentation struct {
	Preference IndentUnit `json:"preference"`
	IndentSize int        `json:"indent_size"`
	UsesTabs   bool       `json:"uses_tabs"`
}

// Naming is the repository-wide naming consensus.
type Naming struct {
	Functions Convention `json:"functions"`
	Classes   Convention `json:"classes"`
	Variables Convention `json:"variables"`
}

// Comments is the repository-wide comment style consensus.
type Comments struct {
	DocstringStyle   DocstringStyle `json:"docstring_style"`
	CommentFrequency float64        `json:"comment_frequency"`
	PrefersInline    bool           `json:"prefers_inline"`
}

// ImportProfile is the union of import categories across all files.
type ImportProfile struct {
	StandardLibs     []string `json:"standard_libs"`
	ThirdParty       []string `json:"third_party"`
	Local            []string `json:"local"`
	CommonThirdParty []string `json:"common_third_party"`
}

// Structure holds aggregate declaration counts and name samples.
type Structure struct {
	TotalFunctions  int      `json:"total_functions"`
	TotalClasses    int      `json:"total_classes"`
	SampleFunctions []string `json:"sample_functions"`
	SampleClasses   []string `json:"sample_classes"`
}

// Profile is the aggregated style consensus of one repository.
// It is immutable once computed and replaced wholesale on re-run.
type Profile struct {
	Indentation   Indentation   `json:"indentation"`
	Naming        Naming        `json:"naming"`
	Comments      Comments      `json:"comments"`
	Imports       ImportProfile `json:"imports"`
	Structure     Structure     `json:"structure"`
	FilesAnalyzed int           `json:"files_analyzed"`
}

// SystemMap is the persisted artifact pairing a fingerprint with the
// repository it was computed from.
type SystemMap struct {
	RepoPath    string  `json:"repo_path"`
	Fingerprint Profile `json:"fingerprint"`
}
