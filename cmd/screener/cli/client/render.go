package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mwantia/screener/pkg/explorer"
	"github.com/mwantia/screener/pkg/query"
	"github.com/mwantia/screener/pkg/savedquery"
)

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// resultMarkdown renders a page as a markdown table. limit <= 0 shows all rows.
func resultMarkdown(page explorer.Page, limit int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Showing **%d** of **%d** records", page.ResultCount, page.TotalCount)
	if active := page.Filters.Active(); len(active) > 0 {
		sb.WriteString(" filtered by ")
		parts := make([]string, 0, len(active))
		for _, column := range active.Columns() {
			parts = append(parts, fmt.Sprintf("`%s` ~ `%s`", column, active[column]))
		}
		sb.WriteString(strings.Join(parts, ", "))
	}
	if page.Sort != nil {
		fmt.Fprintf(&sb, ", sorted by `%s`", page.Sort)
	}
	sb.WriteString("\n\n")

	if len(page.Rows) == 0 || len(page.Columns) == 0 {
		sb.WriteString("_No results found._\n")
		return sb.String()
	}

	header := make([]string, 0, len(page.Columns))
	align := make([]string, 0, len(page.Columns))
	for _, column := range page.Columns {
		header = append(header, escapeCell(column))
		align = append(align, "---")
	}
	fmt.Fprintf(&sb, "| %s |\n| %s |\n", strings.Join(header, " | "), strings.Join(align, " | "))

	rows := page.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		cells := make([]string, 0, len(page.Columns))
		for _, column := range page.Columns {
			cells = append(cells, escapeCell(query.FormatCell(column, row.Get(column))))
		}
		fmt.Fprintf(&sb, "| %s |\n", strings.Join(cells, " | "))
	}
	if len(rows) < len(page.Rows) {
		fmt.Fprintf(&sb, "\n_%d more rows not shown._\n", len(page.Rows)-len(rows))
	}
	return sb.String()
}

func savedMarkdown(queries []savedquery.SavedQuery) string {
	if len(queries) == 0 {
		return "_No saved queries yet._\n"
	}

	var sb strings.Builder
	sb.WriteString("| ID | Name | Filters | Sort | Results | Tags | Saved |\n")
	sb.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, q := range queries {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %d/%d | %s | %s |\n",
			q.ID,
			escapeCell(q.Name),
			escapeCell(query.Encode(q.Filters)),
			escapeCell(q.Sort.String()),
			q.ResultCount, q.TotalCount,
			strings.Join(q.Tags, ", "),
			q.Timestamp.Local().Format("2006-01-02 15:04"),
		)
	}
	return sb.String()
}

// printMarkdown renders md for the terminal, or writes it unchanged when
// raw is set or rendering fails.
func printMarkdown(w io.Writer, md string, raw bool) error {
	if !raw {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err == nil {
			if rendered, err := r.Render(md); err == nil {
				md = rendered
			}
		}
	}
	_, err := io.WriteString(w, md)
	return err
}
