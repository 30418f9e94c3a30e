package config

// Config represents the complete mlprobe configuration
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Render  RenderConfig  `yaml:"render"`
	Probes  ProbesConfig  `yaml:"probes"`
	Python  PythonConfig  `yaml:"python"`
	Git     GitConfig     `yaml:"git"`
	Resolv  ResolvConfig  `yaml:"resolv"`
	Bench   BenchConfig   `yaml:"bench"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig controls what `info` prints when no flags are given
type OutputConfig struct {
	// Format is the render kind. Empty selects tree on a terminal and text otherwise.
	Format string `yaml:"format"`
	Title  string `yaml:"title"`
}

// RenderConfig tunes the text and tree renderers
type RenderConfig struct {
	PriorityKeys []string `yaml:"priority_keys"`
	Indent       int      `yaml:"indent"`
}

// ProbesConfig controls the collector
type ProbesConfig struct {
	Disabled       []string `yaml:"disabled"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// PythonConfig locates the interpreter queried for framework facts
type PythonConfig struct {
	Executable      string   `yaml:"executable"`
	RelatedPackages []string `yaml:"related_packages"`
}

// GitConfig represents git-status configuration
type GitConfig struct {
	Skip []string `yaml:"skip"`
}

// ResolvConfig represents resolv-patch configuration
type ResolvConfig struct {
	File       string `yaml:"file"`
	Nameserver string `yaml:"nameserver"`
}

// BenchConfig represents FLOPs benchmark configuration
type BenchConfig struct {
	Size       int `yaml:"size"`
	Iterations int `yaml:"iterations"`
	Warmup     int `yaml:"warmup"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}
