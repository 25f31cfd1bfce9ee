// Package fingerprint reduces per-file style observations into one
// repository-wide style profile.
package fingerprint

import (
	"sort"
	"strings"

	"genesis/internal/model"
)

// defaultIndentSize applies when no file reported a space-indent width.
const defaultIndentSize = 4

// inlineThreshold is the mean comment density above which the profile
// records a preference for inline comments.
const inlineThreshold = 0.1

// commonImportLimit caps the ranked third-party import list.
const commonImportLimit = 10

// Aggregate reduces observations into a Profile. It is a pure function
// of its input: sums, modes and unions are commutative, and every
// tie-break is a fixed order, so any permutation of obs produces an
// identical profile. Empty input yields the documented default profile.
func Aggregate(obs []model.Observation) model.Profile {
	p := defaultProfile()
	p.FilesAnalyzed = len(obs)
	if len(obs) == 0 {
		return p
	}

	aggregateIndentation(obs, &p)
	aggregateNaming(obs, &p)
	aggregateComments(obs, &p)
	aggregateImports(obs, &p)
	aggregateStructure(obs, &p)

	return p
}

func defaultProfile() model.Profile {
	return model.Profile{
		Indentation: model.Indentation{
			Preference: model.Space,
			IndentSize: defaultIndentSize,
		},
		Naming: model.Naming{
			Functions: model.SnakeCase,
			Classes:   model.PascalCase,
			Variables: model.SnakeCase,
		},
		Comments: model.Comments{
			DocstringStyle: model.TripleDouble,
		},
		Imports: model.ImportProfile{
			StandardLibs:     []string{},
			ThirdParty:       []string{},
			Local:            []string{},
			CommonThirdParty: []string{},
		},
		Structure: model.Structure{
			SampleFunctions: []string{},
			SampleClasses:   []string{},
		},
	}
}

// aggregateIndentation decides tab vs space by grand-total line counts
// across all files (weighted, not one-file-one-vote), and indent size
// by the mode of per-file widths (one vote per reporting file).
func aggregateIndentation(obs []model.Observation, p *model.Profile) {
	var tabLines, spaceLines int
	widthVotes := make(map[int]int)

	for i := range obs {
		tabLines += obs[i].TabLines
		spaceLines += obs[i].SpaceLines
		if obs[i].IndentWidth > 0 {
			widthVotes[obs[i].IndentWidth]++
		}
	}

	pref := model.Space
	if tabLines > spaceLines {
		pref = model.Tab
	}

	p.Indentation = model.Indentation{
		Preference: pref,
		IndentSize: modeSmallest(widthVotes, defaultIndentSize),
		UsesTabs:   pref == model.Tab,
	}
}

// modeSmallest returns the most frequent key, ties to the smallest.
func modeSmallest(votes map[int]int, fallback int) int {
	if len(votes) == 0 {
		return fallback
	}
	keys := make([]int, 0, len(votes))
	for k := range votes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	best, bestCount := fallback, 0
	for _, k := range keys {
		if votes[k] > bestCount {
			best, bestCount = k, votes[k]
		}
	}
	return best
}

func aggregateNaming(obs []model.Observation, p *model.Profile) {
	fnVotes := make(map[model.Convention]int)
	clsVotes := make(map[model.Convention]int)
	for i := range obs {
		fnVotes[obs[i].FunctionConvention]++
		clsVotes[obs[i].ClassConvention]++
	}
	p.Naming = model.Naming{
		Functions: modeConvention(fnVotes, model.SnakeCase),
		Classes:   modeConvention(clsVotes, model.PascalCase),
		Variables: model.SnakeCase,
	}
}

// modeConvention picks the most voted convention; exact ties resolve in
// the fixed order snake_case, camelCase, PascalCase.
func modeConvention(votes map[model.Convention]int, fallback model.Convention) model.Convention {
	order := []model.Convention{model.SnakeCase, model.CamelCase, model.PascalCase}
	best, bestCount := fallback, 0
	for _, c := range order {
		if votes[c] > bestCount {
			best, bestCount = c, votes[c]
		}
	}
	return best
}

func aggregateComments(obs []model.Observation, p *model.Profile) {
	var doubles, singles int
	var sum float64
	for i := range obs {
		switch obs[i].DocstringStyle {
		case model.TripleDouble:
			doubles++
		case model.TripleSingle:
			singles++
		}
		sum += obs[i].CommentDensity
	}

	style := model.TripleDouble
	if singles > doubles {
		style = model.TripleSingle
	}

	mean := sum / float64(len(obs))
	p.Comments = model.Comments{
		DocstringStyle:   style,
		CommentFrequency: mean,
		PrefersInline:    mean > inlineThreshold,
	}
}

func aggregateImports(obs []model.Observation, p *model.Profile) {
	standard := make(map[string]struct{})
	thirdParty := make(map[string]struct{})
	local := make(map[string]struct{})
	mentions := make(map[string]int)

	for i := range obs {
		imp := &obs[i].Imports
		for _, m := range imp.Standard {
			standard[m] = struct{}{}
		}
		for _, m := range imp.ThirdParty {
			thirdParty[m] = struct{}{}
			mentions[topLevel(m)]++
		}
		for _, m := range imp.Local {
			local[m] = struct{}{}
		}
	}

	p.Imports = model.ImportProfile{
		StandardLibs:     sortedKeys(standard),
		ThirdParty:       sortedKeys(thirdParty),
		Local:            sortedKeys(local),
		CommonThirdParty: rankMentions(mentions, commonImportLimit),
	}
}

func topLevel(module string) string {
	if dot := strings.Index(module, "."); dot >= 0 {
		return module[:dot]
	}
	return module
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rankMentions returns up to limit names ordered by mention count
// descending, ties lexicographically, so the ranking is independent of
// observation order.
func rankMentions(mentions map[string]int, limit int) []string {
	names := make([]string, 0, len(mentions))
	for name := range mentions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if mentions[names[i]] != mentions[names[j]] {
			return mentions[names[i]] > mentions[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

// aggregateStructure concatenates declaration names across files with
// no deduplication: the same name in two files counts twice. Samples
// are sorted before truncation to stay permutation-invariant.
func aggregateStructure(obs []model.Observation, p *model.Profile) {
	var functions, classes []string
	for i := range obs {
		functions = append(functions, obs[i].FunctionNames...)
		classes = append(classes, obs[i].ClassNames...)
	}

	p.Structure = model.Structure{
		TotalFunctions:  len(functions),
		TotalClasses:    len(classes),
		SampleFunctions: sample(functions, 20),
		SampleClasses:   sample(classes, 20),
	}
}

func sample(names []string, limit int) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
