package render

import (
	"fmt"
	"strings"

	"mlprobe/internal/facts"
)

const textWidth = 80

// textMarkers are the bullets of each nesting level; deeper levels reuse the last.
var textMarkers = []string{"*", ">", "-", "+"}

func renderText(snap *facts.Snapshot, opts Options) string {
	var lines []string
	border := strings.Repeat("=", textWidth)
	lines = append(lines, border, center(opts.Title, textWidth), border, "")

	for _, section := range snap.Sections() {
		title := "  " + section.Name + "  "
		lines = append(lines, title, strings.Repeat("=", len(title)))
		lines = textMap(lines, section.Facts, 1, opts)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func textMap(lines []string, m *facts.Map, depth int, opts Options) []string {
	pad := strings.Repeat(" ", opts.Indent*depth)
	marker := textMarkers[min(depth-1, len(textMarkers)-1)]

	for _, key := range orderedKeys(m, opts.PriorityKeys) {
		v, _ := m.Get(key)
		switch {
		case v.Kind() == facts.KindMap:
			nested, _ := v.Map()
			lines = append(lines, fmt.Sprintf("%s%s %s:", pad, marker, key))
			lines = textMap(lines, nested, depth+1, opts)
		case v.IsListOfMaps():
			lines = append(lines, fmt.Sprintf("%s%s %s:", pad, marker, key))
			itemPad := strings.Repeat(" ", opts.Indent*(depth+1))
			for i, item := range v.Items() {
				nested, _ := item.Map()
				lines = append(lines, fmt.Sprintf("%s%s Item %d:", itemPad, textMarkers[min(depth, len(textMarkers)-1)], i+1))
				lines = textMap(lines, nested, depth+2, opts)
				lines = append(lines, "")
			}
		case v.Kind() == facts.KindString && strings.Contains(v.String(), "\n"):
			lines = append(lines, fmt.Sprintf("%s%s %s:", pad, marker, key))
			for _, line := range strings.Split(v.String(), "\n") {
				lines = append(lines, pad+strings.Repeat(" ", opts.Indent)+line)
			}
		default:
			lines = append(lines, fmt.Sprintf("%s%s %s: %s", pad, marker, key, scalarText(v)))
		}
	}
	return lines
}

// center pads s on both sides to width, extra space going right.
func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	total := width - len(s)
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}
