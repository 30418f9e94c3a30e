package facts

import (
	"encoding/json"
	"time"
)

// Section is a named group of facts.
type Section struct {
	Name  string
	Facts *Map
}

// Snapshot is the result of one collection run: section names mapped to their
// facts. It is frozen once built and safe to render any number of times.
type Snapshot struct {
	sections    *Map
	collectedAt time.Time
}

// SnapshotBuilder accumulates sections during a collection run.
type SnapshotBuilder struct {
	sections    *Map
	collectedAt time.Time
}

// NewSnapshotBuilder starts a snapshot collected at the given time.
func NewSnapshotBuilder(collectedAt time.Time) *SnapshotBuilder {
	return &SnapshotBuilder{
		sections:    NewMap(),
		collectedAt: collectedAt,
	}
}

// Section returns the facts of the named section, creating it on first use.
// Sections keep the order in which they were first requested.
func (b *SnapshotBuilder) Section(name string) *Map {
	if existing, ok := b.sections.Get(name); ok {
		m, _ := existing.Map()
		return m
	}
	m := NewMap()
	b.sections.Set(name, Object(m))
	return m
}

// Build freezes every section and returns the snapshot. The builder must not
// be used afterwards.
func (b *SnapshotBuilder) Build() *Snapshot {
	b.sections.Freeze()
	return &Snapshot{
		sections:    b.sections,
		collectedAt: b.collectedAt,
	}
}

// NewSnapshot builds a frozen snapshot from ready-made sections, mostly for tests
// and for callers that assemble facts by hand.
func NewSnapshot(sections ...Section) *Snapshot {
	b := NewSnapshotBuilder(time.Now())
	for _, section := range sections {
		facts := section.Facts
		if facts == nil {
			facts = NewMap()
		}
		b.sections.Set(section.Name, Object(facts))
	}
	return b.Build()
}

// CollectedAt returns when collection started.
func (s *Snapshot) CollectedAt() time.Time {
	return s.collectedAt
}

// SectionNames returns the section names in collection order.
func (s *Snapshot) SectionNames() []string {
	return s.sections.Keys()
}

// Section returns the facts of a section.
func (s *Snapshot) Section(name string) (*Map, bool) {
	v, ok := s.sections.Get(name)
	if !ok {
		return nil, false
	}
	return v.Map()
}

// Sections returns every section in collection order.
func (s *Snapshot) Sections() []Section {
	names := s.sections.Keys()
	sections := make([]Section, 0, len(names))
	for _, name := range names {
		m, _ := s.Section(name)
		sections = append(sections, Section{Name: name, Facts: m})
	}
	return sections
}

// Root returns the snapshot as a single map of section name to section facts.
func (s *Snapshot) Root() *Map {
	return s.sections
}

// Filter returns a snapshot restricted to the named sections, in snapshot order.
// Unknown names are ignored.
func (s *Snapshot) Filter(names ...string) *Snapshot {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	b := NewSnapshotBuilder(s.collectedAt)
	for _, section := range s.Sections() {
		if wanted[section.Name] {
			b.sections.Set(section.Name, Object(section.Facts))
		}
	}
	return b.Build()
}

// MarshalJSON writes the sections as a JSON object.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.sections)
}

// MarshalYAML writes the sections as a YAML mapping.
func (s *Snapshot) MarshalYAML() (interface{}, error) {
	return s.sections.MarshalYAML()
}
