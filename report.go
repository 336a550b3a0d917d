package cwn

import (
	"github.com/olekukonko/tablewriter"
	"html"
	"strconv"
	"strings"
)

var ReportHeaders = []string{"Pharmacy", "Address", "Zip Code", "Distance"}

// RenderTable formats locations as a plain text table. Callers check for an
// empty set before rendering.
func RenderTable(records []LocationRecord) string {
	sb := &strings.Builder{}

	table := tablewriter.NewWriter(sb)
	table.SetHeader(ReportHeaders)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(true)
	table.SetCenterSeparator("  ")
	table.SetColumnSeparator("  ")
	table.SetRowSeparator("-")

	for _, record := range records {
		table.Append([]string{
			record.Provider,
			record.Address,
			record.ZipCode,
			strconv.Itoa(record.Distance),
		})
	}

	table.Render()

	return sb.String()
}

// RenderHTML wraps a rendered table for an html email body
func RenderHTML(table string) string {
	return "<pre>" + html.EscapeString(table) + "</pre>"
}
