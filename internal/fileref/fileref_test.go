package fileref_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/parley/internal/fileref"
)

// writeLines creates name under dir containing n numbered lines
// ("line-1" … "line-n") and returns the project directory.
func writeLines(t *testing.T, dir, name string, n int) {
	t.Helper()
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "line-%d\n", i)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExpandLineRange(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, dir, "main.go", 5)

	got := fileref.Expand("see @main.go#2-4 please", dir)

	if strings.Contains(got, "@main.go") {
		t.Errorf("reference not expanded: %q", got)
	}
	if !strings.Contains(got, "[ref: main.go#2-4]") {
		t.Errorf("missing range annotation: %q", got)
	}
	for _, want := range []string{"line-2", "line-3", "line-4"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in %q", want, got)
		}
	}
	for _, absent := range []string{"line-1", "line-5"} {
		if strings.Contains(got, absent) {
			t.Errorf("unexpected %s in %q", absent, got)
		}
	}
}

func TestExpandSingleLine(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, dir, "a.txt", 3)

	got := fileref.Expand("@a.txt#2", dir)
	if !strings.Contains(got, "[ref: a.txt#2]") || !strings.Contains(got, "line-2") {
		t.Errorf("single-line expansion wrong: %q", got)
	}
	if strings.Contains(got, "line-1") || strings.Contains(got, "line-3") {
		t.Errorf("single-line expansion leaked neighbors: %q", got)
	}
}

func TestWholeFileIsAnnotatedNotInlined(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, dir, "big.txt", 10)

	got := fileref.Expand("check @big.txt now", dir)
	if !strings.Contains(got, "[ref: big.txt]") {
		t.Errorf("missing whole-file annotation: %q", got)
	}
	if strings.Contains(got, "line-1") {
		t.Errorf("whole-file reference must not inline content: %q", got)
	}
}

func TestInvalidReferencesStayLiteral(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, dir, "a.txt", 5)

	cases := []string{
		"@a.txt#4-2",   // start > end
		"@a.txt#0",     // non-positive line, not a whole-file reference
		"@a.txt#0-2",   // non-positive start with a range
		"@a.txt#9",     // past end of file
		"@missing.txt", // file does not exist
		"@missing.txt#1-2",
	}
	for _, text := range cases {
		if got := fileref.Expand(text, dir); got != text {
			t.Errorf("Expand(%q) = %q, want unchanged", text, got)
		}
	}
}

func TestAbsolutePathBypassesProjectDir(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, dir, "abs.txt", 2)
	abs := filepath.Join(dir, "abs.txt")

	// Deliberately resolve against an unrelated project directory.
	got := fileref.Expand("@"+abs+"#1", t.TempDir())
	if !strings.Contains(got, "line-1") {
		t.Errorf("absolute reference not expanded: %q", got)
	}
}

func TestAllIsLeftmostNonOverlapping(t *testing.T) {
	text := "@one.txt#1 middle @two.txt#2-3 end"
	var refs []fileref.Reference
	for m := range fileref.All(text) {
		refs = append(refs, m.Ref)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d matches, want 2", len(refs))
	}
	if refs[0].Path != "one.txt" || refs[0].StartLine != 1 {
		t.Errorf("first match = %+v", refs[0])
	}
	if refs[1].Path != "two.txt" || refs[1].StartLine != 2 || refs[1].EndLine != 3 {
		t.Errorf("second match = %+v", refs[1])
	}
}

func TestAllStopsWhenYieldReturnsFalse(t *testing.T) {
	count := 0
	for range fileref.All("@a @b @c") {
		count++
		break
	}
	if count != 1 {
		t.Errorf("lazy sequence continued after break: %d", count)
	}
}

// Property: for all 1 <= a <= b <= n, expansion yields exactly lines [a,b];
// for a > b the reference stays literal.
func TestExpandRangeProperty(t *testing.T) {
	dir := t.TempDir()
	const n = 20
	writeLines(t, dir, "prop.txt", n)

	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(1, n).Draw(rt, "a")
		b := rapid.IntRange(1, n).Draw(rt, "b")
		text := fmt.Sprintf("@prop.txt#%d-%d", a, b)

		got := fileref.Expand(text, dir)
		if a > b {
			if got != text {
				rt.Fatalf("invalid range %d-%d should stay literal, got %q", a, b, got)
			}
			return
		}
		for i := 1; i <= n; i++ {
			has := strings.Contains(got, fmt.Sprintf("line-%d\n", i)) ||
				strings.HasSuffix(got, fmt.Sprintf("line-%d", i))
			want := i >= a && i <= b
			if has != want {
				rt.Fatalf("range %d-%d: line-%d presence = %v, want %v in %q", a, b, i, has, want, got)
			}
		}
	})
}
