// lsp.go — in-memory LSP-shaped fallback for reorder operations a
// language plugin's CodeActionProvider doesn't cover. No subprocess, no
// real language server: this is a narrow textDocument/rangeFormatting-
// shaped stub that reorders whole top-level blocks by line range, the one
// reorder case that's safe to do without real scope analysis.
package lsp

import (
	"fmt"
	"strings"

	"github.com/loomrefactor/loom/internal/model"
)

// Client is the fallback reorder surface. A real implementation would
// speak textDocument/* JSON-RPC to a spawned language server; this one
// operates directly on in-memory line ranges, enough to reorder
// already-delimited blocks (import groups, adjacent top-level
// declarations) without understanding the language's grammar.
type Client struct{}

// New returns a Client. There is no process to start.
func New() *Client {
	return &Client{}
}

// ReorderBlocks reorders the ranges in blocks according to newOrder (a
// permutation of indices into blocks) and returns the single TextEdit
// replacing the span from the first block's start to the last block's
// end. Non-contiguous newOrder values or a length mismatch are reported
// as model.ErrInvalidRequest.
func (c *Client) ReorderBlocks(filePath string, content []byte, blocks []model.EditLocation, newOrder []int) ([]model.TextEdit, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: no blocks to reorder", model.ErrNotSupported)
	}
	if len(newOrder) != len(blocks) {
		return nil, fmt.Errorf("%w: newOrder length %d does not match %d blocks", model.ErrInvalidRequest, len(newOrder), len(blocks))
	}

	lines := strings.Split(string(content), "\n")
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = sliceLines(lines, b.Start, b.End)
	}

	var reordered []string
	seen := make([]bool, len(blocks))
	for _, idx := range newOrder {
		if idx < 0 || idx >= len(blocks) {
			return nil, fmt.Errorf("%w: newOrder index %d out of range", model.ErrInvalidRequest, idx)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: newOrder index %d repeated", model.ErrInvalidRequest, idx)
		}
		seen[idx] = true
		reordered = append(reordered, texts[idx])
	}

	start := blocks[0].Start
	end := blocks[len(blocks)-1].End
	original := sliceLines(lines, start, end)

	return []model.TextEdit{{
		FilePath:     filePath,
		Kind:         model.EditReplace,
		Location:     model.EditLocation{Start: start, End: end},
		OriginalText: original,
		NewText:      strings.Join(reordered, "\n\n"),
		Priority:     1,
		Description:  "lsp-fallback reorder",
	}}, nil
}

func sliceLines(lines []string, start, end model.Position) string {
	if start.Line < 0 || end.Line >= len(lines) || start.Line > end.Line {
		return ""
	}
	return strings.Join(lines[start.Line:end.Line+1], "\n")
}
