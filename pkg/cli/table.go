package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Table renders column-aligned output with a header row and dash divider.
// Rows are buffered until Flush so column widths can be computed from the
// data. When stdout is a terminal, over-wide columns are capped to the
// terminal width and long cells wrap onto continuation lines. Column
// widths ignore ANSI escape sequences, so colored cells align correctly.
type Table struct {
	headers []string
	rows    [][]string
	prefix  string
	out     io.Writer
	width   int
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		out:     os.Stdout,
		width:   terminalWidth(),
	}
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
// Useful for indenting sub-tables within larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// Row buffers one row. Missing trailing cells render as empty columns.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush renders the buffered rows. If no rows were added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && visualLen(cell) > widths[i] {
				widths[i] = visualLen(cell)
			}
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, visualLen(t.prefix))
	}

	t.writeRow(t.headers, widths)
	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.writeRow(dividers, widths)
	for _, row := range t.rows {
		t.writeRow(row, widths)
	}
}

// writeRow emits one logical row, spilling wrapped cells onto as many
// continuation lines as the tallest cell needs.
func (t *Table) writeRow(cells []string, widths []int) {
	wrapped := make([][]string, len(widths))
	height := 1
	for i := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		wrapped[i] = wrapCell(cell, widths[i])
		if len(wrapped[i]) > height {
			height = len(wrapped[i])
		}
	}
	for line := 0; line < height; line++ {
		var b strings.Builder
		b.WriteString(t.prefix)
		for i, w := range widths {
			var part string
			if line < len(wrapped[i]) {
				part = wrapped[i][line]
			}
			b.WriteString(part)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", w-visualLen(part)+2))
			}
		}
		fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
	}
}

// ansiSeq matches SGR escape sequences as produced by the color helpers.
var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// visualLen is the printed width of s, ignoring ANSI escape sequences.
func visualLen(s string) int {
	if strings.ContainsRune(s, '\x1b') {
		s = ansiSeq.ReplaceAllString(s, "")
	}
	return utf8.RuneCountInString(s)
}

// capWidths shrinks column widths until the table fits within termWidth.
// Columns are separated by two spaces; prefix is the visible indent width
// applied to every line. A column never shrinks below its header width,
// so an impossibly narrow terminal still gets header-width columns.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	capped := make([]int, len(widths))
	copy(capped, widths)
	mins := make([]int, len(capped))
	for i := range capped {
		if i < len(headers) {
			mins[i] = visualLen(headers[i])
		}
	}
	total := func() int {
		sum := prefix + 2*(len(capped)-1)
		for _, w := range capped {
			sum += w
		}
		return sum
	}
	for total() > termWidth {
		widest := -1
		for i, w := range capped {
			if w <= mins[i] {
				continue
			}
			if widest < 0 || w > capped[widest] {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		capped[widest]--
	}
	return capped
}

// wrapCell breaks a cell onto multiple lines at word boundaries so no
// line exceeds width. Words longer than width are hard-broken. Cells
// that already fit (measuring visible runes only) come back unchanged.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}
	var lines []string
	var cur string
	for _, word := range strings.Split(s, " ") {
		if cur != "" {
			if visualLen(cur)+1+visualLen(word) <= width {
				cur += " " + word
				continue
			}
			lines = append(lines, cur)
			cur = ""
		}
		for visualLen(word) > width {
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		cur = word
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// terminalWidth reports the width of stdout, or 0 when stdout is not a
// terminal. Zero disables width capping.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return w
}
