// Package diffview renders a line-level before/after preview of a patched
// document.
package diffview

import (
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Render returns a unified-style diff of before and after labeled with name.
// Unchanged regions are elided down to the changed lines. When colorize is
// set, insertions render green and deletions red.
func Render(name, before, after string, colorize bool) string {
	if before == after {
		return ""
	}
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	ins := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	head := color.New(color.FgCyan, color.Bold)
	for _, c := range []*color.Color{ins, del, head} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var sb strings.Builder
	sb.WriteString(head.Sprintf("--- %s", name))
	sb.WriteByte('\n')
	sb.WriteString(head.Sprintf("+++ %s (patched)", name))
	sb.WriteByte('\n')
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			writeLines(&sb, ins, "+", d.Text)
		case diffpatch.DiffDelete:
			writeLines(&sb, del, "-", d.Text)
		case diffpatch.DiffEqual:
			writeContext(&sb, d.Text)
		}
	}
	return sb.String()
}

// contextLines bounds how much of an unchanged region is shown on each side
// of a change.
const contextLines = 3

func writeLines(sb *strings.Builder, c *color.Color, prefix, text string) {
	for _, line := range splitLines(text) {
		sb.WriteString(c.Sprintf("%s%s", prefix, line))
		sb.WriteByte('\n')
	}
}

func writeContext(sb *strings.Builder, text string) {
	lines := splitLines(text)
	if len(lines) > 2*contextLines+1 {
		for _, line := range lines[:contextLines] {
			sb.WriteString(" " + line + "\n")
		}
		sb.WriteString("@@\n")
		lines = lines[len(lines)-contextLines:]
	}
	for _, line := range lines {
		sb.WriteString(" " + line + "\n")
	}
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
