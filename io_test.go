/*
Copyright © 2023 the fixbed authors.
This file is part of fixbed.

fixbed is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fixbed is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fixbed.  If not, see <http://www.gnu.org/licenses/>.
*/

package fixbed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runWithOutput integrates a short fixed-step simulation with an
// Outputter attached and returns the output directory.
func runWithOutput(t *testing.T, outputVariables map[string]string) (string, *Column) {
	t.Helper()
	dir := t.TempDir()

	o, err := NewOutputter(dir, outputVariables, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := testColumn()
	c.AutoSteps = false
	c.NumSteps = 5
	c.WriteEvery = 2
	c.InitFuncs = []ColumnManipulator{
		InitColumn(),
		o.CheckOutputVars(),
		o.Init(),
	}
	c.RunFuncs = []ColumnManipulator{
		SSPRK3(),
		o.Output(),
		BreakthroughConvergenceCheck(nil),
	}
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if err := o.Close(); err != nil {
		t.Fatal(err)
	}
	return dir, c
}

func readLines(t *testing.T, file string) []string {
	t.Helper()
	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestOutputBreakthroughCurves(t *testing.T) {
	dir, c := runWithOutput(t, nil)

	for j, comp := range c.Components {
		file := filepath.Join(dir, fmt.Sprintf("component_%d_%s.data", j, comp.Name))
		lines := readLines(t, file)
		// Steps 0, 2, and 4 are written.
		if len(lines) != 3 {
			t.Fatalf("%s: got %d lines, want 3", file, len(lines))
		}
		for _, line := range lines {
			if fields := strings.Fields(line); len(fields) != 3 {
				t.Errorf("%s: line %q has %d fields, want 3", file, line, len(fields))
			}
		}
	}
}

func TestOutputColumnProfile(t *testing.T) {
	dir, c := runWithOutput(t, nil)

	lines := readLines(t, filepath.Join(dir, "column.data"))
	var headers, rows int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "# column"):
			headers++
		case strings.TrimSpace(line) != "":
			rows++
			want := 3 + 6*c.Nc
			if fields := strings.Fields(line); len(fields) != want {
				t.Fatalf("profile row %q has %d fields, want %d", line, len(fields), want)
			}
		}
	}
	if want := 3 + 6*c.Nc; headers != want {
		t.Errorf("got %d layout header lines, want %d", headers, want)
	}
	// Three frames of Ng+1 nodes each.
	if want := 3 * (c.NumNodes + 1); rows != want {
		t.Errorf("got %d profile rows, want %d", rows, want)
	}
}

func TestOutputDerivedVariables(t *testing.T) {
	dir, c := runWithOutput(t, map[string]string{
		"Qtot":  "sum(Q)",
		"logPt": "log(Pt)",
	})

	lines := readLines(t, filepath.Join(dir, "derived.data"))
	if !strings.HasPrefix(lines[0], "# columns: z") {
		t.Fatalf("missing derived header, got %q", lines[0])
	}
	if !strings.Contains(lines[0], "Qtot") || !strings.Contains(lines[0], "logPt") {
		t.Errorf("derived header %q is missing variable names", lines[0])
	}
	var rows int
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows++
		if fields := strings.Fields(line); len(fields) != 3 {
			t.Errorf("derived row %q has %d fields, want 3", line, len(fields))
		}
	}
	if want := 3 * (c.NumNodes + 1); rows != want {
		t.Errorf("got %d derived rows, want %d", rows, want)
	}
}

func TestCheckOutputVarsUndefined(t *testing.T) {
	o, err := NewOutputter(t.TempDir(), map[string]string{"bad": "nosuchvar + 1"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := testColumn()
	c.InitFuncs = []ColumnManipulator{InitColumn(), o.CheckOutputVars()}
	err = c.Init()
	if err == nil {
		t.Fatal("expected an error for an undefined output variable")
	}
	if !strings.Contains(err.Error(), "undefined variable name") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestOutputterRejectsBadExpression(t *testing.T) {
	if _, err := NewOutputter(t.TempDir(), map[string]string{"bad": "1 +"}, nil); err == nil {
		t.Error("expected a compile error for a malformed expression")
	}
}
