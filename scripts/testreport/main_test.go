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

package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTest = `package sample

// TestPurpose: Checks a thing.
// Scope: Unit Test
// Expected: It works.
// Test Case ID: IMP-07
func TestThing(t *testing.T) {}
`

// TestPurpose: Validates that annotation headers are parsed and categorised.
// Scope: Unit Test
// Expected: Header fields are extracted and the ID prefix selects the category.
// Test Case ID: RPT-01
func TestParseAnnotation(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "sample_test.go", sampleTest, parser.ParseComments)
	require.NoError(t, err)
	require.Len(t, file.Decls, 1)

	a := parseAnnotation(file.Decls[0].(*ast.FuncDecl).Doc)
	assert.Equal(t, "Checks a thing.", a.Purpose)
	assert.Equal(t, "Unit Test", a.Scope)
	assert.Equal(t, "IMP-07", a.TestCaseID)
	assert.Equal(t, "Import", a.Category)

	assert.Equal(t, "Other", parseAnnotation(nil).Category)
}

// TestPurpose: Validates merging of go test events with annotations.
// Scope: Unit Test
// Expected: Pass, fail and not-run states are counted; subtests inherit the parent annotation; failure output is kept only for failures.
// Test Case ID: RPT-02
func TestMerge(t *testing.T) {
	const pkg = modulePath + "/internal/importer"
	annotations := map[string]Annotation{
		pkg + ".TestA": {TestCaseID: "IMP-01", Category: "Import"},
		pkg + ".TestB": {TestCaseID: "IMP-02", Category: "Import"},
		pkg + ".TestC": {TestCaseID: "IMP-03", Category: "Import"},
	}
	events := strings.Join([]string{
		`{"Action":"run","Package":"` + pkg + `","Test":"TestA"}`,
		`{"Action":"output","Package":"` + pkg + `","Test":"TestA","Output":"ok\n"}`,
		`{"Action":"pass","Package":"` + pkg + `","Test":"TestA","Elapsed":0.01}`,
		`{"Action":"output","Package":"` + pkg + `","Test":"TestB/sub","Output":"boom\n"}`,
		`{"Action":"fail","Package":"` + pkg + `","Test":"TestB/sub","Elapsed":0.02}`,
		`{"Action":"fail","Package":"` + pkg + `","Test":"TestB","Elapsed":0.02}`,
		`not json`,
	}, "\n")

	s, err := merge(strings.NewReader(events), annotations)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 2, s.Failed)

	byName := map[string]Result{}
	for _, r := range s.Results {
		byName[r.Name] = r
	}
	assert.Equal(t, "not run", byName["TestC"].Status)
	assert.Empty(t, byName["TestA"].Failure)
	assert.Equal(t, "boom\n", byName["TestB/sub"].Failure)
	assert.Equal(t, "IMP-02", byName["TestB/sub"].Annotations.TestCaseID)
	assert.Contains(t, renderMarkdown(s, "Unit"), "| IMP-01 | `TestA` | pass |")
}
