package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"genesis/internal/guide"
	"genesis/internal/index"
	"genesis/internal/llm"
)

const (
	planContextResults  = 5
	weaveContextResults = 3
)

// ErrNoClient indicates Generate was called without an llm client.
var ErrNoClient = errors.New("engine: no llm client configured")

// BlueprintFile describes one file the blueprint wants created or
// modified.
type BlueprintFile struct {
	Path         string   `json:"path"`
	Action       string   `json:"action"`
	Description  string   `json:"description"`
	Pseudocode   string   `json:"pseudocode"`
	Imports      []string `json:"imports"`
	Dependencies []string `json:"dependencies"`
}

// Blueprint is the planning phase output.
type Blueprint struct {
	Files   []BlueprintFile `json:"files"`
	Summary string          `json:"summary"`
}

// GeneratedFile is one file written during weaving.
type GeneratedFile struct {
	Path   string `json:"path"`
	Action string `json:"action"`
	Code   string `json:"code"`
}

// GenerateResult pairs the blueprint with what weaving wrote.
type GenerateResult struct {
	Blueprint Blueprint       `json:"blueprint"`
	Files     []GeneratedFile `json:"generated_files"`
	OutputDir string          `json:"output_dir"`
}

// Generate plans a blueprint for the request and weaves its files into
// outputDir. Runs assimilation first when no system map exists yet.
func (e *Engine) Generate(ctx context.Context, request, outputDir string) (*GenerateResult, error) {
	if e.llm == nil {
		return nil, ErrNoClient
	}

	systemMap, err := e.loadSystemMap()
	if err != nil {
		return nil, err
	}
	if systemMap == nil {
		fmt.Fprintln(e.stderr, "Warning: system map not found, running assimilation first")
		if _, err := e.Assimilate(""); err != nil {
			return nil, err
		}
		if systemMap, err = e.loadSystemMap(); err != nil {
			return nil, err
		}
	}

	idx, err := index.Load(e.cfg.IndexDir())
	if err != nil {
		return nil, err
	}
	styleGuide := guide.Render(systemMap.Fingerprint)

	blueprint, err := e.plan(ctx, idx, styleGuide, request)
	if err != nil {
		return nil, err
	}

	if outputDir == "" {
		outputDir = "generated_code"
	}
	files, err := e.weave(ctx, idx, styleGuide, blueprint, outputDir)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{Blueprint: *blueprint, Files: files, OutputDir: outputDir}, nil
}

const planSystemPrompt = `You are an expert software architect. Your task is to create a detailed code blueprint based on user requirements.

%s

Analyze the user request and the provided codebase context, then create a blueprint that includes:
1. List of files to create or modify
2. For each file: detailed pseudocode or structure
3. Dependencies and imports needed
4. Integration points with existing code

Return your response as a JSON object with this structure:
{
    "files": [
        {
            "path": "relative/path/to/file.py",
            "action": "create" or "modify",
            "description": "What this file does",
            "pseudocode": "Detailed pseudocode or structure",
            "imports": ["list", "of", "imports"],
            "dependencies": ["list", "of", "dependencies"]
        }
    ],
    "summary": "Brief summary of the implementation"
}`

// plan retrieves context for the request and asks the model for a
// blueprint. Unparseable responses fall back to a single-file
// blueprint carrying the raw response as pseudocode.
func (e *Engine) plan(ctx context.Context, idx *index.Index, styleGuide, request string) (*Blueprint, error) {
	fmt.Fprintln(e.stdout, "Phase 2: architectural planning")

	contextText := formatContext(idx.Search(request, planContextResults))

	userPrompt := fmt.Sprintf(`User Request: %s

Relevant Codebase Context:
%s

Create a detailed code blueprint following the existing codebase patterns and style.`, request, contextText)

	response, err := e.llm.Generate(ctx, userPrompt, fmt.Sprintf(planSystemPrompt, styleGuide))
	if err != nil {
		return nil, fmt.Errorf("planning: %w", err)
	}

	blueprint := parseBlueprint(response, request)
	fmt.Fprintf(e.stdout, "Blueprint ready: %d files\n", len(blueprint.Files))
	return blueprint, nil
}

func parseBlueprint(response, request string) *Blueprint {
	var blueprint Blueprint
	if err := json.Unmarshal([]byte(llm.StripFences(response)), &blueprint); err != nil {
		return &Blueprint{
			Files: []BlueprintFile{{
				Path:        "generated_code.py",
				Action:      "create",
				Description: "Generated code based on user request",
				Pseudocode:  response,
			}},
			Summary: request,
		}
	}
	normalizeBlueprint(&blueprint)
	return &blueprint
}

// normalizeBlueprint fills defaults so weaving never sees a file
// without a path or action.
func normalizeBlueprint(b *Blueprint) {
	for i := range b.Files {
		f := &b.Files[i]
		if f.Path == "" {
			f.Path = "generated_code.py"
		}
		if f.Action == "" {
			f.Action = "create"
		}
		if f.Description == "" {
			f.Description = "Generated code"
		}
	}
}

const weaveSystemPrompt = `You are an expert Python developer. Generate production-ready code that perfectly matches the existing codebase style.

%s

IMPORTANT:
- Follow the exact indentation style (tabs/spaces, size)
- Use the exact naming conventions (snake_case, camelCase, etc.)
- Match the docstring style
- Use the same import organization
- Follow the same code structure patterns
- Ensure the code is complete, functional, and well-documented`

// weave generates each blueprint file and writes it under outputDir.
func (e *Engine) weave(ctx context.Context, idx *index.Index, styleGuide string, blueprint *Blueprint, outputDir string) ([]GeneratedFile, error) {
	fmt.Fprintln(e.stdout, "Phase 3: adaptive weaving")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var generated []GeneratedFile
	for _, file := range blueprint.Files {
		fmt.Fprintf(e.stdout, "Generating %s...\n", file.Path)

		code, err := e.generateCode(ctx, idx, styleGuide, file)
		if err != nil {
			return nil, err
		}

		target := filepath.Join(outputDir, file.Path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("creating dir for %s: %w", file.Path, err)
		}
		if err := os.WriteFile(target, []byte(code), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", target, err)
		}

		generated = append(generated, GeneratedFile{Path: target, Action: file.Action, Code: code})
	}

	if e.cfg.GetBool("generation.auto_test", true) {
		tests, err := e.generateTests(ctx, generated, outputDir)
		if err != nil {
			return nil, err
		}
		generated = append(generated, tests...)
	}

	fmt.Fprintf(e.stdout, "Weaving complete: %d files in %s\n", len(generated), outputDir)
	return generated, nil
}

func (e *Engine) generateCode(ctx context.Context, idx *index.Index, styleGuide string, file BlueprintFile) (string, error) {
	query := strings.TrimSpace(file.Description + " " + file.Pseudocode)
	contextText := formatContext(idx.Search(query, weaveContextResults))

	userPrompt := fmt.Sprintf(`Generate Python code for the following file:

File: %s
Description: %s
Pseudocode/Structure:
%s

Required Imports: %s
Dependencies: %s

Relevant Existing Code:
%s

Generate the complete, production-ready Python code that integrates seamlessly with the existing codebase.`,
		file.Path, file.Description, file.Pseudocode,
		strings.Join(file.Imports, ", "), strings.Join(file.Dependencies, ", "),
		contextText)

	code, err := e.llm.Generate(ctx, userPrompt, fmt.Sprintf(weaveSystemPrompt, styleGuide))
	if err != nil {
		return "", fmt.Errorf("generating %s: %w", file.Path, err)
	}
	return llm.StripFences(code), nil
}

// generateTests writes one test file per created file under
// outputDir/tests.
func (e *Engine) generateTests(ctx context.Context, generated []GeneratedFile, outputDir string) ([]GeneratedFile, error) {
	framework := e.cfg.GetString("generation.test_framework", "pytest")

	var tests []GeneratedFile
	for _, file := range generated {
		if file.Action != "create" {
			continue
		}

		systemPrompt := fmt.Sprintf(
			"Generate %s test cases for the provided code. Ensure tests are comprehensive and follow best practices.",
			framework)
		userPrompt := fmt.Sprintf(`Generate %s test cases for:

%s

Create comprehensive test cases covering:
- Happy path scenarios
- Edge cases
- Error handling
- Integration with existing code`, framework, file.Code)

		testCode, err := e.llm.Generate(ctx, userPrompt, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("generating tests for %s: %w", file.Path, err)
		}
		testCode = llm.StripFences(testCode)

		target := filepath.Join(outputDir, "tests", "test_"+filepath.Base(file.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("creating tests dir: %w", err)
		}
		if err := os.WriteFile(target, []byte(testCode), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", target, err)
		}

		tests = append(tests, GeneratedFile{Path: target, Action: "create", Code: testCode})
	}
	return tests, nil
}

func formatContext(results []index.Result) string {
	var parts []string
	for _, r := range results {
		file := r.Chunk.Metadata["file"]
		if file == "" {
			file = "unknown"
		}
		parts = append(parts, fmt.Sprintf("--- File: %s ---\n%s\n", file, r.Chunk.Text))
	}
	return strings.Join(parts, "\n")
}
