// Package render turns a facts.Snapshot into one of several textual views.
// Rendering never mutates the snapshot and is deterministic for a given
// snapshot, kind and option set.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mlprobe/internal/config"
	"mlprobe/internal/facts"
)

// Kind names an output representation.
type Kind string

// Output kinds
const (
	KindText     Kind = "text"
	KindTree     Kind = "tree"
	KindJSON     Kind = "json"
	KindMarkdown Kind = "markdown"
	KindYAML     Kind = "yaml"
	KindHTML     Kind = "html"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindText, KindTree, KindJSON, KindMarkdown, KindYAML, KindHTML}

// ErrUnknownKind is returned for a kind outside Kinds.
var ErrUnknownKind = errors.New("unknown output format")

// ParseKind validates a kind name.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownKind, name, kindList())
}

func kindList() string {
	names := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// Options tune the renderers.
type Options struct {
	Title string
	// PriorityKeys are ordered first by the text and tree views.
	PriorityKeys []string
	// Indent is the width of one text nesting level.
	Indent int
	Styles Styles
}

// DefaultOptions returns the options of the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

// OptionsFromConfig builds render options from configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Title:        cfg.Output.Title,
		PriorityKeys: cfg.Render.PriorityKeys,
		Indent:       cfg.Render.Indent,
		Styles:       DefaultStyles(),
	}
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = config.DefaultTitle
	}
	if o.PriorityKeys == nil {
		o.PriorityKeys = config.DefaultPriorityKeys
	}
	if o.Indent <= 0 {
		o.Indent = 4
	}
	return o
}

// Render produces the representation of snap in the given kind. On error the
// returned string is empty.
func Render(snap *facts.Snapshot, kind Kind, opts Options) (string, error) {
	opts = opts.withDefaults()

	switch kind {
	case KindText:
		return renderText(snap, opts), nil
	case KindTree:
		return renderTree(snap, opts), nil
	case KindJSON:
		return renderJSON(snap)
	case KindMarkdown:
		return renderMarkdown(snap, opts), nil
	case KindYAML:
		return renderYAML(snap)
	case KindHTML:
		return renderHTML(snap, opts)
	default:
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownKind, string(kind), kindList())
	}
}

func renderJSON(snap *facts.Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot as JSON: %w", err)
	}
	return string(data), nil
}

func renderYAML(snap *facts.Snapshot) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("failed to encode snapshot as YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode snapshot as YAML: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// orderedKeys puts priority keys first in priority order, then the remaining
// keys alphabetically.
func orderedKeys(m *facts.Map, priority []string) []string {
	rank := make(map[string]int, len(priority))
	for i, key := range priority {
		if _, seen := rank[key]; !seen {
			rank[key] = i
		}
	}

	keys := m.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		ri, iPriority := rank[keys[i]]
		rj, jPriority := rank[keys[j]]
		switch {
		case iPriority && jPriority:
			return ri < rj
		case iPriority != jPriority:
			return iPriority
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// scalarText renders a non-map value on one line.
func scalarText(v facts.Value) string {
	if v.Kind() == facts.KindList && len(v.Items()) == 0 {
		return emptyList
	}
	return v.String()
}

const emptyList = "Empty list"
