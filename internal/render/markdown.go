package render

import (
	"fmt"
	"strings"

	"mlprobe/internal/facts"
)

const tableHeader = "| Property | Value |\n| --- | --- |"

// nbsp indents nested rows inside a Markdown table cell.
const nbsp = "&nbsp;&nbsp;&nbsp;&nbsp;"

func renderMarkdown(snap *facts.Snapshot, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.Title)

	for _, section := range snap.Sections() {
		fmt.Fprintf(&b, "## %s\n\n", section.Name)
		for _, key := range section.Facts.Keys() {
			v, _ := section.Facts.Get(key)
			markdownFact(&b, key, v)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func markdownFact(b *strings.Builder, key string, v facts.Value) {
	switch {
	case v.Kind() == facts.KindMap:
		nested, _ := v.Map()
		fmt.Fprintf(b, "### %s\n\n%s\n", key, tableHeader)
		markdownRows(b, nested, 0)
		b.WriteString("\n")
	case v.IsListOfMaps():
		items := v.Items()
		fmt.Fprintf(b, "### %s\n\n", key)
		for i, item := range items {
			if len(items) > 1 {
				fmt.Fprintf(b, "#### Item %d\n\n", i+1)
			}
			nested, _ := item.Map()
			b.WriteString(tableHeader + "\n")
			markdownRows(b, nested, 0)
			b.WriteString("\n")
		}
	case v.Kind() == facts.KindList:
		parts := make([]string, 0, len(v.Items()))
		for _, item := range v.Items() {
			parts = append(parts, item.String())
		}
		if len(parts) == 0 {
			parts = append(parts, emptyList)
		}
		fmt.Fprintf(b, "**%s**: %s\n\n", key, strings.Join(parts, "<br>"))
	case v.Kind() == facts.KindString && strings.Contains(v.String(), "\n"):
		fmt.Fprintf(b, "### %s\n```\n%s\n```\n\n", key, v.String())
	default:
		fmt.Fprintf(b, "**%s**: %s\n\n", key, v.String())
	}
}

// markdownRows writes one table row per fact, flattening nested maps and
// lists of maps into indented rows so the table stays valid.
func markdownRows(b *strings.Builder, m *facts.Map, depth int) {
	pad := strings.Repeat(nbsp, depth)
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		switch {
		case v.Kind() == facts.KindMap:
			nested, _ := v.Map()
			fmt.Fprintf(b, "| %s**%s** | |\n", pad, cell(key))
			markdownRows(b, nested, depth+1)
		case v.IsListOfMaps():
			fmt.Fprintf(b, "| %s**%s** | |\n", pad, cell(key))
			for i, item := range v.Items() {
				nested, _ := item.Map()
				fmt.Fprintf(b, "| %s%s*Item %d* | |\n", pad, nbsp, i+1)
				markdownRows(b, nested, depth+2)
			}
		default:
			fmt.Fprintf(b, "| %s%s | %s |\n", pad, cell(key), cell(scalarText(v)))
		}
	}
}

// cell escapes a table cell value.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
