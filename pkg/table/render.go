package table

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// RenderTerminal writes the result as a plain terminal table.
func RenderTerminal(w io.Writer, result *Result) {
	if result.Empty() {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	t := tablewriter.NewWriter(w)
	t.SetHeader(result.Columns)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderLine(false)
	t.SetBorder(false)
	t.SetTablePadding("\t")
	t.SetNoWhiteSpace(true)

	for _, record := range result.Records() {
		t.Append(record)
	}
	t.Render()
}
