// Package fileref implements the @path[#line|#start-end] mini-syntax used
// inside feedback text. Resolution is best-effort: a reference that is
// malformed or points at a missing file is left as literal text, never an
// error.
package fileref

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// refPattern matches @<path> optionally followed by #<line> or #<a>-<b>.
// The path runs to the next whitespace, '#' or '@'.
var refPattern = regexp.MustCompile(`@([^\s@#]+)(?:#(\d+)(?:-(\d+))?)?`)

// Reference is one parsed @path token.
type Reference struct {
	Raw       string // the matched token, including the leading '@'
	Path      string // as written; relative paths resolve against the project directory
	HasLines  bool   // a '#' line spec was written, even a malformed one
	StartLine int    // 1-based when HasLines
	EndLine   int    // inclusive, equals StartLine for a single-line spec
}

// Match pairs a Reference with its byte offsets in the scanned text.
type Match struct {
	Start int
	End   int
	Ref   Reference
}

// All returns the non-overlapping, leftmost-first reference matches in text
// as a lazy sequence.
func All(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, idx := range refPattern.FindAllStringSubmatchIndex(text, -1) {
			m := Match{Start: idx[0], End: idx[1]}
			m.Ref.Raw = text[idx[0]:idx[1]]
			m.Ref.Path = text[idx[2]:idx[3]]
			if idx[4] >= 0 {
				m.Ref.HasLines = true
				m.Ref.StartLine, _ = strconv.Atoi(text[idx[4]:idx[5]])
				m.Ref.EndLine = m.Ref.StartLine
			}
			if idx[6] >= 0 {
				m.Ref.EndLine, _ = strconv.Atoi(text[idx[6]:idx[7]])
			}
			if !yield(m) {
				return
			}
		}
	}
}

// valid reports whether the line spec is well-formed: no lines at all, or
// positive 1-based lines with start <= end. "#0" is a written spec with a
// non-positive line, not a whole-file reference.
func (r Reference) valid() bool {
	if !r.HasLines {
		return true
	}
	return r.StartLine > 0 && r.EndLine >= r.StartLine
}

// resolvePath joins relative reference paths onto projectDir.
func (r Reference) resolvePath(projectDir string) string {
	if filepath.IsAbs(r.Path) {
		return r.Path
	}
	return filepath.Join(projectDir, r.Path)
}

// expand resolves one reference to its expansion fragment. ok is false when
// the reference must stay literal: bad line spec, missing file, or a start
// line past the end of the file.
func (r Reference) expand(projectDir string) (fragment string, ok bool) {
	if !r.valid() {
		return "", false
	}
	full := r.resolvePath(projectDir)
	if !r.HasLines {
		// Whole-file reference: annotate the path, do not inline content.
		if _, err := os.Stat(full); err != nil {
			return "", false
		}
		return fmt.Sprintf("[ref: %s]", r.Path), true
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", false
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if r.StartLine > len(lines) {
		return "", false
	}
	end := min(r.EndLine, len(lines))

	var sb strings.Builder
	if r.StartLine == end {
		fmt.Fprintf(&sb, "[ref: %s#%d]\n", r.Path, r.StartLine)
	} else {
		fmt.Fprintf(&sb, "[ref: %s#%d-%d]\n", r.Path, r.StartLine, end)
	}
	for _, line := range lines[r.StartLine-1 : end] {
		sb.WriteString("    " + line + "\n")
	}
	return strings.TrimSuffix(sb.String(), "\n"), true
}

// Expand replaces every resolvable reference in text with its expansion
// fragment, in place. Unresolvable references pass through unchanged.
func Expand(text, projectDir string) string {
	var sb strings.Builder
	last := 0
	for m := range All(text) {
		sb.WriteString(text[last:m.Start])
		if fragment, ok := m.Ref.expand(projectDir); ok {
			sb.WriteString(fragment)
		} else {
			sb.WriteString(m.Ref.Raw)
		}
		last = m.End
	}
	sb.WriteString(text[last:])
	return sb.String()
}
