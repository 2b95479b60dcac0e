package transform

import (
	"fmt"
	"sort"
)

// Edit replaces the half-open byte range [Start, End) of the source with
// Text. Offsets always reference the source the plugin pass was given.
type Edit struct {
	Start int
	End   int
	Text  string
}

// outermost drops edits nested inside (or overlapping) an earlier edit.
// Nested constructs are picked up again on the next pass, after the outer
// rewrite re-parses.
func outermost(edits []Edit) []Edit {
	if len(edits) < 2 {
		return edits
	}
	sorted := append([]Edit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})
	kept := sorted[:1]
	for _, e := range sorted[1:] {
		if e.Start < kept[len(kept)-1].End {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// applyEdits splices the edits into src. Edits must be non-overlapping;
// they are applied back to front so earlier offsets stay valid.
func applyEdits(src string, edits []Edit) (string, error) {
	sorted := append([]Edit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})
	var out = src
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(src) {
			return "", fmt.Errorf("edit range [%d,%d) out of bounds for %d bytes", e.Start, e.End, len(src))
		}
		out = out[:e.Start] + e.Text + out[e.End:]
	}
	return out, nil
}

// sliceNode cuts the source text covered by a node span. Guarded so a
// misreported span degrades to an empty string rather than a panic.
func sliceRange(src string, start, end int) string {
	if start < 0 || end < start || end > len(src) {
		return ""
	}
	return src[start:end]
}

func blankRange(b []byte, start, end int) {
	for i := start; i < end && i < len(b); i++ {
		if b[i] != '\n' && b[i] != '\r' {
			b[i] = ' '
		}
	}
}

func trimIndex(s string, start, end int) (int, int) {
	for start < end && isSpaceByte(s[start]) {
		start++
	}
	for end > start && isSpaceByte(s[end-1]) {
		end--
	}
	return start, end
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
