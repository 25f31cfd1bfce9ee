// Package security scans Python sources for common vulnerability
// patterns: injection risks, hardcoded secrets, weak crypto, and
// insecure randomness.
package security

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"genesis/internal/discover"
)

// Vulnerability is one finding at a specific line.
type Vulnerability struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Report is the repository roll-up.
type Report struct {
	TotalVulnerabilities int               `json:"total_vulnerabilities"`
	ByType               map[string]int    `json:"by_type"`
	BySeverity           map[string]int    `json:"by_severity"`
	Vulnerabilities      []Vulnerability   `json:"vulnerabilities"`
	FilesScanned         int               `json:"files_scanned"`
}

// patternGroup keeps the table ordered so findings come out in a
// stable order regardless of map iteration.
type patternGroup struct {
	vulnType string
	patterns []*regexp.Regexp
}

var vulnerabilityPatterns = []patternGroup{
	{"sql_injection", compileAll(
		`(?i)execute\s*\(\s*['"].*%`,
		`(?i)execute\s*\(\s*f['"]`,
		`(?i)query\s*\(\s*['"].*\+`,
	)},
	{"command_injection", compileAll(
		`(?i)os\.system\s*\(`,
		`(?i)subprocess\.call\s*\(`,
		`(?i)subprocess\.Popen\s*\(`,
		`(?i)eval\s*\(`,
		`(?i)exec\s*\(`,
	)},
	{"path_traversal", compileAll(
		`(?i)open\s*\(\s*['"].*\.\./`,
		`(?i)open\s*\(\s*['"].*\.\.\\\\`,
	)},
	{"hardcoded_secrets", compileAll(
		`(?i)(password|api_key|secret|token)\s*=\s*['"][^'"]+['"]`,
		`(?i)(password|api_key|secret|token)\s*:\s*['"][^'"]+['"]`,
	)},
	{"insecure_random", compileAll(
		`(?i)random\.random\s*\(`,
		`(?i)random\.randint\s*\(`,
	)},
	{"weak_crypto", compileAll(
		`(?i)hashlib\.md5\s*\(`,
		`(?i)hashlib\.sha1\s*\(`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(expr)
	}
	return compiled
}

var severities = map[string]string{
	"sql_injection":     "high",
	"command_injection": "high",
	"code_injection":    "high",
	"hardcoded_secret":  "high",
	"hardcoded_secrets": "high",
	"path_traversal":    "medium",
	"weak_crypto":       "medium",
	"insecure_random":   "low",
}

var descriptions = map[string]string{
	"sql_injection":     "Potential SQL injection vulnerability - use parameterized queries",
	"command_injection": "Potential command injection vulnerability - validate and sanitize input",
	"path_traversal":    "Potential path traversal vulnerability - validate file paths",
	"hardcoded_secrets": "Hardcoded secrets detected - use environment variables",
	"hardcoded_secret":  "Hardcoded credentials detected - use environment variables or secure storage",
	"insecure_random":   "Insecure random number generation - use secrets module",
	"weak_crypto":       "Weak cryptographic hash - use stronger algorithms (SHA-256+)",
	"code_injection":    "Code injection risk - avoid eval/exec with user input",
}

// Scanner scans source files. Not safe for concurrent use because of
// the embedded parser.
type Scanner struct {
	parser *sitter.Parser
}

// NewScanner creates a Scanner with a fresh parser.
func NewScanner() *Scanner {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Scanner{parser: p}
}

// ScanFile runs the pattern table and the syntax-aware checks over one
// file's content. Unparseable files still get the pattern findings.
func (s *Scanner) ScanFile(path string, content []byte) []Vulnerability {
	text := string(content)
	var vulns []Vulnerability

	for _, group := range vulnerabilityPatterns {
		for _, pattern := range group.patterns {
			for _, loc := range pattern.FindAllStringIndex(text, -1) {
				line := 1 + strings.Count(text[:loc[0]], "\n")
				vulns = append(vulns, Vulnerability{
					Type:        group.vulnType,
					Severity:    severity(group.vulnType),
					File:        path,
					Line:        line,
					Code:        lineAt(text, line),
					Description: describe(group.vulnType),
				})
			}
		}
	}

	vulns = append(vulns, s.scanTree(path, content, text)...)
	return vulns
}

// scanTree flags eval/exec/compile calls and string assignments to
// credential-like names. Parse failures yield no tree findings.
func (s *Scanner) scanTree(path string, content []byte, text string) []Vulnerability {
	tree, err := s.parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil
	}

	var vulns []Vulnerability
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "call":
			if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
				name := string(content[fn.StartByte():fn.EndByte()])
				if name == "eval" || name == "exec" || name == "compile" {
					line := int(n.StartPoint().Row) + 1
					vulns = append(vulns, Vulnerability{
						Type:     "code_injection",
						Severity: severity("code_injection"),
						File:     path,
						Line:     line,
						Code:     lineAt(text, line),
						Description: fmt.Sprintf(
							"Use of %s() can lead to code injection vulnerabilities", name),
					})
				}
			}
		case "assignment":
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left != nil && right != nil && left.Type() == "identifier" && right.Type() == "string" {
				name := strings.ToLower(string(content[left.StartByte():left.EndByte()]))
				for _, keyword := range []string{"password", "secret", "api_key", "token"} {
					if strings.Contains(name, keyword) {
						line := int(n.StartPoint().Row) + 1
						vulns = append(vulns, Vulnerability{
							Type:        "hardcoded_secret",
							Severity:    severity("hardcoded_secret"),
							File:        path,
							Line:        line,
							Code:        lineAt(text, line),
							Description: describe("hardcoded_secret"),
						})
						break
					}
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return vulns
}

// ScanRepository scans every Python file under root and rolls the
// findings up by type and severity.
func ScanRepository(root string, ignorePatterns []string, stderr io.Writer) (*Report, error) {
	files, err := discover.Files(root, ignorePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	s := NewScanner()
	report := &Report{
		ByType:     make(map[string]int),
		BySeverity: make(map[string]int),
	}

	for _, rel := range files {
		content, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			fmt.Fprintf(stderr, "Warning: could not read %s: %v\n", rel, err)
			continue
		}
		report.FilesScanned++

		for _, v := range s.ScanFile(rel, content) {
			report.Vulnerabilities = append(report.Vulnerabilities, v)
			report.ByType[v.Type]++
			report.BySeverity[v.Severity]++
		}
	}

	report.TotalVulnerabilities = len(report.Vulnerabilities)
	return report, nil
}

func severity(vulnType string) string {
	if s, ok := severities[vulnType]; ok {
		return s
	}
	return "low"
}

func describe(vulnType string) string {
	if d, ok := descriptions[vulnType]; ok {
		return d
	}
	return "Security issue detected"
}

func lineAt(text string, line int) string {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}
