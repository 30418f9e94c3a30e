package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"mlprobe/internal/facts"
)

func renderTree(snap *facts.Snapshot, opts Options) string {
	st := opts.Styles
	var blocks []string
	blocks = append(blocks, st.Header.Render(opts.Title), "")

	for _, section := range snap.Sections() {
		blocks = append(blocks, st.Section.Render(section.Name), st.Border.Render(strings.Repeat("─", textWidth)))

		if v, ok := section.Facts.Get("Devices"); ok && v.IsListOfMaps() && len(v.Items()) > 0 {
			blocks = append(blocks, st.Subsection.Render("Devices:"), deviceTable(v.Items(), st))
		}

		root := branch(st.Subsection.Render(section.Name+" Details"), st)
		treeMap(root, section.Facts, opts)
		blocks = append(blocks, root.String(), "")
	}
	return strings.TrimRight(strings.Join(blocks, "\n"), "\n")
}

func branch(label string, st Styles) *tree.Tree {
	return tree.Root(label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.Border)
}

func treeMap(t *tree.Tree, m *facts.Map, opts Options) {
	st := opts.Styles
	for _, key := range orderedKeys(m, opts.PriorityKeys) {
		v, _ := m.Get(key)
		switch {
		case v.Kind() == facts.KindMap:
			nested, _ := v.Map()
			child := branch(st.Key.Render(key), st)
			treeMap(child, nested, opts)
			t.Child(child)
		case v.IsListOfMaps():
			child := branch(st.Key.Render(key), st)
			for i, item := range v.Items() {
				nested, _ := item.Map()
				itemBranch := branch(st.Subsection.Render(fmt.Sprintf("Item %d", i+1)), st)
				treeMap(itemBranch, nested, opts)
				child.Child(itemBranch)
			}
			t.Child(child)
		default:
			t.Child(st.Key.Render(key+": ") + leafValue(key, v, st))
		}
	}
}

func leafValue(key string, v facts.Value, st Styles) string {
	if v.Kind() == facts.KindList && len(v.Items()) == 0 {
		return st.Dim.Render(emptyList)
	}
	return st.For(Classify(key, v)).Render(v.String())
}

// deviceTable lays devices out as rows, columns taken from the first device.
func deviceTable(devices []facts.Value, st Styles) string {
	first, _ := devices[0].Map()
	columns := first.Keys()

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.Border).
		Headers(columns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.Subsection.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, device := range devices {
		m, _ := device.Map()
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			v, ok := m.Get(column)
			if !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, st.For(Classify(column, v)).Render(v.String()))
		}
		t.Row(cells...)
	}

	title := st.Subsection.Render(fmt.Sprintf("Found %d GPU devices", len(devices)))
	return title + "\n" + t.String()
}
