package data

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Print renders the frame as a bordered text grid:
//
//	+------------+
//	| test       |
//	+------------+
//	| simple_str |
//	+------------+
//
// Cells are left aligned, each column as wide as its widest cell, and
// trailing whitespace is trimmed. A frame without columns renders as "".
func (df *DataFrame) Print() (string, error) {
	if len(df.columns) == 0 {
		return "", nil
	}

	header := make([]string, len(df.columns))
	for i, c := range df.columns {
		header[i] = c.name
	}

	cells := make([][]string, 0, len(df.rows))
	for _, r := range df.rows {
		line := make([]string, len(r.values))
		for i, v := range r.values {
			text, err := v.Text()
			if err != nil {
				return "", err
			}
			line[i] = text
		}
		cells = append(cells, line)
	}

	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	// the bottom border closes a header-only grid
	table.SetHeaderLine(len(cells) > 0)
	table.AppendBulk(cells)
	table.Render()

	return trimOutput(sb.String()), nil
}

func trimOutput(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
}
