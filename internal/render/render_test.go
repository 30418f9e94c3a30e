package render

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"mlprobe/internal/facts"
)

func sampleSnapshot() *facts.Snapshot {
	b := facts.NewSnapshotBuilder(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	basic := b.Section("Basic Information")
	basic.Set("Zebra", facts.String("last"))
	basic.Set("Timestamp", facts.String("2024-03-01 00:00:00"))
	basic.Set("Version", facts.String("1.0"))
	basic.Set("CUDA Available", facts.Bool(true))

	dist := facts.NewMap()
	dist.Set("NCCL", facts.Bool(true))
	dist.Set("MPI", facts.String(facts.Unknown))
	framework := b.Section("ML Framework")
	framework.Set("Distributed Backends", facts.Object(dist))
	framework.Set("Packages", facts.Strings([]string{"torch==2.1.0", "numpy==1.26.0"}))
	framework.Set("Empty", facts.Strings(nil))

	gpuSection := b.Section("GPU Information")
	gpuSection.Set("CUDA Available", facts.Bool(true))
	gpuSection.Set("GPU Count", facts.Int(2))
	gpuSection.Set("Devices", facts.Devices([]facts.DeviceRecord{
		{Index: 0, Name: "NVIDIA A100", Capability: "8.0", MemoryTotal: 40 << 30},
		{Index: 1, Name: "NVIDIA A100", Capability: "8.0", MemoryTotal: 40 << 30},
	}))
	return b.Build()
}

func noGPUSnapshot() *facts.Snapshot {
	b := facts.NewSnapshotBuilder(time.Time{})
	b.Section("GPU Information").Set("CUDA Available", facts.Bool(false))
	return b.Build()
}

func TestRender_Deterministic(t *testing.T) {
	snap := sampleSnapshot()
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			first, err := Render(snap, kind, DefaultOptions())
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			second, err := Render(snap, kind, DefaultOptions())
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if first != second {
				t.Error("rendering the same snapshot twice differs")
			}
			if first == "" {
				t.Error("empty rendering")
			}
		})
	}
}

func TestRender_JSONTopLevelKeysAreSections(t *testing.T) {
	snap := sampleSnapshot()
	out, err := Render(snap, KindJSON, DefaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	names := snap.SectionNames()
	if len(decoded) != len(names) {
		t.Errorf("decoded %d keys, want %d", len(decoded), len(names))
	}
	for _, name := range names {
		if _, ok := decoded[name]; !ok {
			t.Errorf("section %q missing from JSON", name)
		}
	}

	if !strings.Contains(out, "\n  \"Basic Information\": {") {
		t.Error("JSON should use 2-space indentation")
	}
	if strings.Index(out, "Basic Information") > strings.Index(out, "GPU Information") {
		t.Error("JSON should keep section order")
	}
}

func TestRender_JSONNonFiniteFloat(t *testing.T) {
	b := facts.NewSnapshotBuilder(time.Time{})
	b.Section("Benchmark").Set("Ratio", facts.Float(math.NaN()))
	b.Section("Benchmark").Set("Peak", facts.Float(math.Inf(1)))

	out, err := Render(b.Build(), KindJSON, DefaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	var decoded map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got := decoded["Benchmark"]["Ratio"]; got != "NaN" {
		t.Errorf("Ratio = %v, want NaN", got)
	}
	if got := decoded["Benchmark"]["Peak"]; got != "+Inf" {
		t.Errorf("Peak = %v, want +Inf", got)
	}
}

func TestRender_YAMLParses(t *testing.T) {
	out, err := Render(sampleSnapshot(), KindYAML, DefaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	var decoded map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if _, ok := decoded["GPU Information"]; !ok {
		t.Error("GPU Information missing from YAML")
	}
}

func TestRender_PriorityOrdering(t *testing.T) {
	for _, kind := range []Kind{KindText, KindTree} {
		t.Run(string(kind), func(t *testing.T) {
			out, err := Render(sampleSnapshot(), kind, DefaultOptions())
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			version := strings.Index(out, "Version: 1.0")
			cuda := strings.Index(out, "CUDA Available: true")
			zebra := strings.Index(out, "Zebra: last")
			if version < 0 || cuda < 0 || zebra < 0 {
				t.Fatalf("missing keys in output:\n%s", out)
			}
			if !(version < cuda && cuda < zebra) {
				t.Errorf("want Version < CUDA Available < Zebra, got %d, %d, %d", version, cuda, zebra)
			}
		})
	}
}

func TestOrderedKeys(t *testing.T) {
	m := facts.NewMap()
	for _, key := range []string{"b", "Zebra", "a", "CUDA Available", "Version"} {
		m.Set(key, facts.Int(1))
	}
	got := orderedKeys(m, []string{"Version", "CUDA Available", "Missing"})
	want := []string{"Version", "CUDA Available", "Zebra", "a", "b"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("orderedKeys() = %v, want %v", got, want)
	}
	if m.Keys()[0] != "b" {
		t.Error("orderedKeys must not reorder the map")
	}
}

func TestRender_UnknownKind(t *testing.T) {
	out, err := Render(sampleSnapshot(), Kind("xml"), DefaultOptions())
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Render() error = %v, want ErrUnknownKind", err)
	}
	if out != "" {
		t.Errorf("Render() returned partial output %q", out)
	}

	if _, err := ParseKind("xml"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind() error = %v, want ErrUnknownKind", err)
	}
	if k, err := ParseKind(" JSON "); err != nil || k != KindJSON {
		t.Errorf("ParseKind(JSON) = %q, %v", k, err)
	}
}

func TestRender_NoAccelerator(t *testing.T) {
	snap := noGPUSnapshot()
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			out, err := Render(snap, kind, DefaultOptions())
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(out, "GPU Information") {
				t.Error("GPU section missing")
			}
			if !strings.Contains(out, "false") {
				t.Error("CUDA Available value missing")
			}
			if strings.Contains(out, "Found") {
				t.Error("device table rendered without devices")
			}
		})
	}
}

func TestRender_TextLayout(t *testing.T) {
	out, err := Render(sampleSnapshot(), KindText, DefaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		strings.Repeat("=", 80),
		"  Basic Information  \n=====================",
		"    * Distributed Backends:\n        > MPI: Unknown\n        > NCCL: true",
		"    * Devices:\n        > Item 1:\n            - Capability: 8.0",
		"    * Packages: torch==2.1.0, numpy==1.26.0",
		"    * Empty: Empty list",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q\n%s", want, out)
		}
	}
}

func TestRender_TextIndentOption(t *testing.T) {
	opts := DefaultOptions()
	opts.Indent = 2
	out, err := Render(sampleSnapshot(), KindText, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "\n  * Version: 1.0") {
		t.Errorf("indent option not applied:\n%s", out)
	}
}

func TestRender_Markdown(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "Host Report"
	out, err := Render(sampleSnapshot(), KindMarkdown, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"# Host Report",
		"## GPU Information",
		"### Distributed Backends\n\n| Property | Value |\n| --- | --- |\n| NCCL | true |",
		"**Packages**: torch==2.1.0<br>numpy==1.26.0",
		"### Devices\n\n#### Item 1",
		"| Name | NVIDIA A100 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n%s", want, out)
		}
	}
}

func TestMarkdownRows_NestedStructures(t *testing.T) {
	inner := facts.NewMap()
	inner.Set("Pipe", facts.String("a|b"))
	outer := facts.NewMap()
	outer.Set("Nested", facts.Object(inner))

	var b strings.Builder
	markdownRows(&b, outer, 0)
	want := "| **Nested** | |\n| " + nbsp + "Pipe | a\\|b |\n"
	if b.String() != want {
		t.Errorf("markdownRows() = %q, want %q", b.String(), want)
	}
}

func TestRender_HTML(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "Report <1>"
	out, err := Render(sampleSnapshot(), KindHTML, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		"<title>Report &lt;1&gt;</title>",
		"<h2>GPU Information</h2>",
		"<table>",
		"<td>NVIDIA A100</td>",
		"torch==2.1.0<br>numpy==1.26.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestRender_TreeDeviceTable(t *testing.T) {
	out, err := Render(sampleSnapshot(), KindTree, DefaultOptions())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		"Found 2 GPU devices",
		"GPU Information Details",
		"Item 2",
		"Empty: Empty list",
		"NVIDIA A100",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q\n%s", want, out)
		}
	}
}

func TestRender_DoesNotMutateSnapshot(t *testing.T) {
	snap := sampleSnapshot()
	before, _ := Render(snap, KindJSON, DefaultOptions())
	for _, kind := range Kinds {
		if _, err := Render(snap, kind, DefaultOptions()); err != nil {
			t.Fatalf("Render(%s) error = %v", kind, err)
		}
	}
	after, _ := Render(snap, KindJSON, DefaultOptions())
	if before != after {
		t.Error("rendering changed the snapshot")
	}
}
