package reconcile

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultDiffContext is the number of unchanged lines shown around a change.
const DefaultDiffContext = 2

// DiffResult is a line-oriented preview of a catalog rewrite.
type DiffResult struct {
	Text    string
	Added   int
	Deleted int
}

// Empty reports whether the two versions were identical.
func (d DiffResult) Empty() bool {
	return d.Added == 0 && d.Deleted == 0
}

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// Diff renders the line changes between oldContent and newContent with
// contextLines of surrounding text, in a unified-diff-like layout.
func Diff(oldContent, newContent []byte, name string, contextLines int) DiffResult {
	if string(oldContent) == string(newContent) {
		return DiffResult{}
	}
	if contextLines < 0 {
		contextLines = 0
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(oldContent), string(newContent))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []diffLine
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			all = append(all, diffLine{op: d.Type, text: line})
		}
	}

	// keep[i] marks lines printed: every change plus its context window.
	keep := make([]bool, len(all))
	var res DiffResult
	for i, l := range all {
		if l.op == diffmatchpatch.DiffEqual {
			continue
		}
		if l.op == diffmatchpatch.DiffInsert {
			res.Added++
		} else {
			res.Deleted++
		}
		for j := max(0, i-contextLines); j <= min(len(all)-1, i+contextLines); j++ {
			keep[j] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", name, name)
	oldLine, newLine := 1, 1
	gap := true
	for i, l := range all {
		if keep[i] {
			if gap {
				fmt.Fprintf(&b, "@@ -%d +%d @@\n", oldLine, newLine)
				gap = false
			}
			switch l.op {
			case diffmatchpatch.DiffInsert:
				b.WriteString("+")
			case diffmatchpatch.DiffDelete:
				b.WriteString("-")
			default:
				b.WriteString(" ")
			}
			b.WriteString(l.text)
			b.WriteByte('\n')
		} else {
			gap = true
		}
		switch l.op {
		case diffmatchpatch.DiffInsert:
			newLine++
		case diffmatchpatch.DiffDelete:
			oldLine++
		default:
			oldLine++
			newLine++
		}
	}
	res.Text = b.String()
	return res
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}
