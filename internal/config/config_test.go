package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Format", cfg.Output.Format, ""},
		{"Title", cfg.Output.Title, DefaultTitle},
		{"Indent", cfg.Render.Indent, 4},
		{"TimeoutSeconds", cfg.Probes.TimeoutSeconds, 10},
		{"PythonExecutable", cfg.Python.Executable, "python3"},
		{"ResolvFile", cfg.Resolv.File, "/etc/resolv.conf"},
		{"Nameserver", cfg.Resolv.Nameserver, "10.50.10.50"},
		{"BenchSize", cfg.Bench.Size, 512},
		{"BenchIterations", cfg.Bench.Iterations, 10},
		{"BenchWarmup", cfg.Bench.Warmup, 2},
		{"LogLevel", cfg.Logging.Level, "warn"},
		{"FirstPriorityKey", cfg.Render.PriorityKeys[0], "Version"},
		{"LastPriorityKey", cfg.Render.PriorityKeys[len(cfg.Render.PriorityKeys)-1], "Script"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestDefaultConfig_ListsAreCopies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.PriorityKeys[0] = "Changed"

	if DefaultPriorityKeys[0] != "Version" {
		t.Error("mutating a config must not change the package defaults")
	}
}

func TestValidation_ValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	if errors := cfg.Validate(); len(errors) != 0 {
		t.Errorf("Validate() on default config returned errors: %v", errors)
	}
}

func TestValidation_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"indent too small", func(c *Config) { c.Render.Indent = 0 }, "render.indent"},
		{"duplicate priority key", func(c *Config) { c.Render.PriorityKeys = []string{"Version", "Version"} }, "render.priority_keys"},
		{"timeout too small", func(c *Config) { c.Probes.TimeoutSeconds = 0 }, "probes.timeout_seconds"},
		{"empty python", func(c *Config) { c.Python.Executable = "" }, "python.executable"},
		{"bad glob", func(c *Config) { c.Git.Skip = []string{"[abc"} }, "git.skip"},
		{"empty resolv file", func(c *Config) { c.Resolv.File = "" }, "resolv.file"},
		{"nameserver not an IP", func(c *Config) { c.Resolv.Nameserver = "dns.local" }, "resolv.nameserver"},
		{"bench size too big", func(c *Config) { c.Bench.Size = 10000 }, "bench.size"},
		{"no iterations", func(c *Config) { c.Bench.Iterations = 0 }, "bench.iterations"},
		{"negative warmup", func(c *Config) { c.Bench.Warmup = -1 }, "bench.warmup"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			errors := cfg.Validate()
			found := false
			for _, err := range errors {
				if err.Path == tt.path {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() should return error for %s, got %v", tt.path, errors)
			}
		})
	}
}

func TestValidation_AcceptsEveryFormat(t *testing.T) {
	for _, format := range Formats {
		cfg := DefaultConfig()
		cfg.Output.Format = format
		if errors := cfg.Validate(); len(errors) != 0 {
			t.Errorf("Validate() with format %q returned errors: %v", format, errors)
		}
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `
output:
  format: json
probes:
  disabled: [python, framework]
git:
  skip: ["archive-*", "**/vendor"]
bench:
  size: 256
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Output.Format != "json" {
		t.Errorf("Format = %s, want json", cfg.Output.Format)
	}
	if strings.Join(cfg.Probes.Disabled, ",") != "python,framework" {
		t.Errorf("Disabled = %v, want [python framework]", cfg.Probes.Disabled)
	}
	if len(cfg.Git.Skip) != 2 {
		t.Errorf("Skip = %v, want 2 patterns", cfg.Git.Skip)
	}
	if cfg.Bench.Size != 256 {
		t.Errorf("Bench.Size = %d, want 256", cfg.Bench.Size)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.Logging.Level)
	}

	if cfg.Bench.Iterations != 10 {
		t.Errorf("Bench.Iterations = %d, want 10 (default)", cfg.Bench.Iterations)
	}
	if len(cfg.Render.PriorityKeys) != len(DefaultPriorityKeys) {
		t.Errorf("PriorityKeys length = %d, want default", len(cfg.Render.PriorityKeys))
	}
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := os.WriteFile(configPath, []byte("resolv:\n  nameserver: not-an-ip\n"), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Fatal("LoadFrom() should return error for invalid config")
	}
	if !strings.Contains(err.Error(), "resolv.nameserver") {
		t.Errorf("error should name the field, got %v", err)
	}
}

func TestLoadFrom_NonexistentFile(t *testing.T) {
	if _, err := LoadFrom("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFrom() should return error for nonexistent file")
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	malformedContent := `
output:
  format: json
    title: nested
`
	if err := os.WriteFile(configPath, []byte(malformedContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("LoadFrom() should return error for malformed YAML")
	}
}

func TestLoad_LayersSystemAndUser(t *testing.T) {
	systemDir := t.TempDir()
	home := t.TempDir()
	t.Setenv("MLPROBE_CONFIG_DIR", systemDir)
	t.Setenv("HOME", home)

	system := "output:\n  format: markdown\nbench:\n  size: 128\n"
	if err := os.WriteFile(filepath.Join(systemDir, "config.yaml"), []byte(system), 0o600); err != nil {
		t.Fatal(err)
	}
	userDir := filepath.Join(home, ".mlprobe")
	if err := os.MkdirAll(userDir, 0o750); err != nil {
		t.Fatal(err)
	}
	user := "output:\n  format: yaml\n"
	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte(user), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Format = %s, want yaml (user overrides system)", cfg.Output.Format)
	}
	if cfg.Bench.Size != 128 {
		t.Errorf("Bench.Size = %d, want 128 (from system)", cfg.Bench.Size)
	}
}

func TestLoad_NoFiles(t *testing.T) {
	t.Setenv("MLPROBE_CONFIG_DIR", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Title != DefaultTitle {
		t.Errorf("Title = %s, want default", cfg.Output.Title)
	}
}

func TestMergeConfig(t *testing.T) {
	dst := DefaultConfig()
	src := Config{
		Render:  RenderConfig{PriorityKeys: []string{"Zebra"}},
		Bench:   BenchConfig{Warmup: 5},
		Logging: LoggingConfig{Level: "error"},
	}

	mergeConfig(&dst, &src)

	if strings.Join(dst.Render.PriorityKeys, ",") != "Zebra" {
		t.Errorf("PriorityKeys = %v, want [Zebra]", dst.Render.PriorityKeys)
	}
	if dst.Bench.Warmup != 5 {
		t.Errorf("Warmup = %d, want 5", dst.Bench.Warmup)
	}
	if dst.Logging.Level != "error" {
		t.Errorf("LogLevel = %s, want error", dst.Logging.Level)
	}
	if dst.Bench.Size != 512 {
		t.Errorf("Bench.Size = %d, want 512 (default)", dst.Bench.Size)
	}
	if dst.Python.Executable != "python3" {
		t.Errorf("Python.Executable = %s, want python3 (default)", dst.Python.Executable)
	}
}

func TestProbeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ProbeTimeout(); got != 10*time.Second {
		t.Errorf("ProbeTimeout() = %v, want 10s", got)
	}
}

func TestSystemConfigPath(t *testing.T) {
	path := SystemConfigPath()
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("SystemConfigPath() basename = %s, want config.yaml", filepath.Base(path))
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Path: "bench.size", Message: "must be between 1 and 8192"}

	expected := "bench.size: must be between 1 and 8192"
	if err.Error() != expected {
		t.Errorf("ValidationError.Error() = %s, want %s", err.Error(), expected)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	if got := formatValidationErrors(nil); got != "" {
		t.Errorf("formatValidationErrors(nil) = %q, want empty", got)
	}

	single := formatValidationErrors([]ValidationError{{Path: "a", Message: "bad"}})
	if single != "a: bad" {
		t.Errorf("formatValidationErrors(single) = %q", single)
	}

	multiple := formatValidationErrors([]ValidationError{
		{Path: "a", Message: "bad"},
		{Path: "b", Message: "worse"},
	})
	if !strings.HasPrefix(multiple, "2 validation errors:") {
		t.Errorf("formatValidationErrors(multiple) = %q", multiple)
	}
}
