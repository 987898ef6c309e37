// diffutil.go — unified diff rendering for dry-run apply previews, using
// sourcegraph/go-diff for the wire format (hunk headers, +/- line
// prefixes) the way the corpus's own patch tooling parses and prints it.
package diffutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Unified renders a unified diff between oldContent and newContent for
// path, with contextLines of unchanged context around each changed
// region. It computes hunks with a common-prefix/common-suffix collapse
// rather than a full Myers diff — sufficient for previewing the
// contiguous edits a single Plan produces, and cheap to reason about when
// deciding whether a rollback left the tree in the expected state.
func Unified(path string, oldContent, newContent []byte, contextLines int) (string, error) {
	if bytes.Equal(oldContent, newContent) {
		return "", nil
	}

	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	prefix := commonPrefixLen(oldLines, newLines)
	suffix := commonSuffixLen(oldLines[prefix:], newLines[prefix:])

	oldChangedStart := prefix
	oldChangedEnd := len(oldLines) - suffix
	newChangedStart := prefix
	newChangedEnd := len(newLines) - suffix

	ctxStart := max(0, oldChangedStart-contextLines)
	oldCtxEnd := min(len(oldLines), oldChangedEnd+contextLines)
	newCtxEnd := min(len(newLines), newChangedEnd+contextLines)

	var body bytes.Buffer
	for i := ctxStart; i < oldChangedStart; i++ {
		body.WriteString(" " + oldLines[i])
	}
	for i := oldChangedStart; i < oldChangedEnd; i++ {
		body.WriteString("-" + oldLines[i])
	}
	for i := newChangedStart; i < newChangedEnd; i++ {
		body.WriteString("+" + newLines[i])
	}
	for i := oldChangedEnd; i < oldCtxEnd; i++ {
		body.WriteString(" " + oldLines[i])
	}

	hunk := &diff.Hunk{
		OrigStartLine: int32(ctxStart + 1),
		OrigLines:     int32(oldCtxEnd - ctxStart),
		NewStartLine:  int32(ctxStart + 1),
		NewLines:      int32(newCtxEnd - ctxStart),
		Body:          body.Bytes(),
	}

	fileDiff := &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    []*diff.Hunk{hunk},
	}

	out, err := diff.PrintFileDiff(fileDiff)
	if err != nil {
		return "", fmt.Errorf("print diff for %s: %w", path, err)
	}
	return string(out), nil
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if last := len(lines) - 1; last >= 0 && lines[last] == "" {
		lines = lines[:last]
	}
	return lines
}

func commonPrefixLen(a, b []string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b []string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}
