// Copyright 2026 The SalesDesk Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command testreport merges `go test -json` output with the annotation
// headers of test functions into JSON and Markdown reports.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/salesdesk/salesdesk"

// Annotation holds the header fields of one test function
type Annotation struct {
	Purpose    string `json:"purpose,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Security   string `json:"security,omitempty"`
	Expected   string `json:"expected,omitempty"`
	TestCaseID string `json:"test_case_id,omitempty"`
	Category   string `json:"category"`
}

// Result is the merged outcome of one test
type Result struct {
	Package     string     `json:"package"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Elapsed     float64    `json:"elapsed_seconds"`
	Failure     string     `json:"failure_reason,omitempty"`
	Annotations Annotation `json:"annotations"`
}

// Summary is the full report
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Results     []Result  `json:"results"`
}

type testEvent struct {
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Elapsed float64 `json:"Elapsed"`
	Output  string  `json:"Output"`
}

// categories maps Test Case ID prefixes to report sections.
var categories = map[string]string{
	"IMP":  "Import",
	"CUS":  "Customers",
	"TEN":  "Tenancy",
	"ISO":  "Tenancy",
	"AZ":   "Authorization",
	"SES":  "Authentication",
	"IDN":  "Identity",
	"ONB":  "Onboarding",
	"REP":  "Sales Reps",
	"WF":   "Workflow",
	"AUD":  "Audit",
	"HTTP": "API",
	"CFG":  "Configuration",
	"RPT":  "Tooling",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var input, outJSON, outMD, root, title string

	cmd := &cobra.Command{
		Use:           "testreport",
		Short:         "Build test reports from go test -json output",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			annotations, err := scanAnnotations(root)
			if err != nil {
				return err
			}
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			summary, err := merge(f, annotations)
			if err != nil {
				return err
			}
			if err := writeJSON(summary, outJSON); err != nil {
				return err
			}
			if outMD != "" {
				if err := os.WriteFile(outMD, []byte(renderMarkdown(summary, title)), 0o644); err != nil {
					return err
				}
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d tests failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "go test -json output file (required)")
	cmd.Flags().StringVar(&outJSON, "out-json", "", "JSON report path (required)")
	cmd.Flags().StringVar(&outMD, "out-md", "", "Markdown report path")
	cmd.Flags().StringVar(&root, "root", ".", "Repository root to scan for test annotations")
	cmd.Flags().StringVar(&title, "title", "Test Report", "Report title")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("out-json")
	return cmd
}

// scanAnnotations parses every _test.go file under root and returns the
// headers of its Test functions keyed by "<import path>.<TestName>".
func scanAnnotations(root string) (map[string]Annotation, error) {
	out := make(map[string]Annotation)
	fset := token.NewFileSet()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, "_test.go") {
			return nil
		}

		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		pkg := importPath(rel)

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || !strings.HasPrefix(fn.Name.Name, "Test") {
				continue
			}
			out[pkg+"."+fn.Name.Name] = parseAnnotation(fn.Doc)
		}
		return nil
	})
	return out, err
}

func importPath(rel string) string {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return modulePath
	}
	return modulePath + "/" + rel
}

func parseAnnotation(doc *ast.CommentGroup) Annotation {
	var a Annotation
	if doc != nil {
		for _, c := range doc.List {
			text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
			key, value, ok := strings.Cut(text, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch key {
			case "TestPurpose":
				a.Purpose = value
			case "Scope":
				a.Scope = value
			case "Security":
				a.Security = value
			case "Expected":
				a.Expected = value
			case "Test Case ID":
				a.TestCaseID = value
			}
		}
	}
	a.Category = categoryOf(a.TestCaseID)
	return a
}

func categoryOf(testCaseID string) string {
	prefix, _, _ := strings.Cut(testCaseID, "-")
	if c, ok := categories[prefix]; ok {
		return c
	}
	return "Other"
}

// merge folds the event stream into per-test results. Annotated tests that
// never ran are reported as "not run"; subtests inherit their parent's
// annotation.
func merge(r io.Reader, annotations map[string]Annotation) (*Summary, error) {
	results := make(map[string]*Result, len(annotations))
	for key, a := range annotations {
		pkg, name := splitKey(key)
		results[key] = &Result{Package: pkg, Name: name, Status: "not run", Annotations: a}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var ev testEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil || ev.Test == "" {
			continue
		}

		key := ev.Package + "." + ev.Test
		res, ok := results[key]
		if !ok {
			parent, _, _ := strings.Cut(ev.Test, "/")
			a, found := annotations[ev.Package+"."+parent]
			if !found {
				a = Annotation{Category: "Other"}
			}
			res = &Result{Package: ev.Package, Name: ev.Test, Annotations: a}
			results[key] = res
		}

		switch ev.Action {
		case "pass", "fail", "skip":
			res.Status = ev.Action
			res.Elapsed = ev.Elapsed
		case "output":
			if res.Status == "" || res.Status == "not run" {
				res.Failure += ev.Output
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read test output: %w", err)
	}

	s := &Summary{GeneratedAt: time.Now().UTC()}
	for _, res := range results {
		if res.Status != "fail" {
			res.Failure = ""
		}
		s.Results = append(s.Results, *res)
		s.Total++
		switch res.Status {
		case "pass":
			s.Passed++
		case "fail":
			s.Failed++
		case "skip":
			s.Skipped++
		}
	}
	sort.Slice(s.Results, func(i, j int) bool {
		a, b := s.Results[i], s.Results[j]
		if a.Annotations.Category != b.Annotations.Category {
			return a.Annotations.Category < b.Annotations.Category
		}
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		return a.Name < b.Name
	})
	return s, nil
}

func splitKey(key string) (pkg, name string) {
	i := strings.LastIndex(key, ".")
	return key[:i], key[i+1:]
}

func writeJSON(s *Summary, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func renderMarkdown(s *Summary, title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# SalesDesk %s\n\n", title)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", s.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "**Total:** %d | **Passed:** %d | **Failed:** %d | **Skipped:** %d\n\n", s.Total, s.Passed, s.Failed, s.Skipped)

	category := ""
	for _, r := range s.Results {
		if r.Annotations.Category != category {
			category = r.Annotations.Category
			fmt.Fprintf(&sb, "\n## %s\n\n", category)
			sb.WriteString("| ID | Test | Status | Purpose |\n|---|---|---|---|\n")
		}
		fmt.Fprintf(&sb, "| %s | `%s` | %s | %s |\n",
			r.Annotations.TestCaseID, r.Name, r.Status, strings.ReplaceAll(r.Annotations.Purpose, "|", "\\|"))
	}

	if s.Failed > 0 {
		sb.WriteString("\n## Failures\n")
		for _, r := range s.Results {
			if r.Status == "fail" {
				fmt.Fprintf(&sb, "\n### %s\n\n```\n%s```\n", r.Name, r.Failure)
			}
		}
	}
	return sb.String()
}
