package config

import (
	"fmt"
	"net"

	"github.com/bmatcuk/doublestar/v4"
)

// Formats lists the accepted values of output.format. The empty string defers
// the choice to the terminal check.
var Formats = []string{"", "text", "tree", "json", "markdown", "yaml", "html"}

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateRender()...)
	errors = append(errors, c.validateProbes()...)
	errors = append(errors, c.validatePython()...)
	errors = append(errors, c.validateGit()...)
	errors = append(errors, c.validateResolv()...)
	errors = append(errors, c.validateBench()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateOutput() []ValidationError {
	if contains(Formats, c.Output.Format) {
		return nil
	}

	return []ValidationError{{
		Path:    "output.format",
		Message: fmt.Sprintf("must be one of %v, got '%s'", Formats[1:], c.Output.Format),
	}}
}

func (c *Config) validateRender() []ValidationError {
	var errors []ValidationError

	if c.Render.Indent < 1 || c.Render.Indent > 16 {
		errors = append(errors, ValidationError{
			Path:    "render.indent",
			Message: fmt.Sprintf("must be between 1 and 16, got %d", c.Render.Indent),
		})
	}

	seen := make(map[string]bool, len(c.Render.PriorityKeys))
	for _, key := range c.Render.PriorityKeys {
		if seen[key] {
			errors = append(errors, ValidationError{
				Path:    "render.priority_keys",
				Message: fmt.Sprintf("duplicate key '%s'", key),
			})
		}
		seen[key] = true
	}

	return errors
}

func (c *Config) validateProbes() []ValidationError {
	if c.Probes.TimeoutSeconds >= 1 {
		return nil
	}

	return []ValidationError{{
		Path:    "probes.timeout_seconds",
		Message: fmt.Sprintf("must be at least 1, got %d", c.Probes.TimeoutSeconds),
	}}
}

func (c *Config) validatePython() []ValidationError {
	if c.Python.Executable != "" {
		return nil
	}

	return []ValidationError{{
		Path:    "python.executable",
		Message: "must not be empty",
	}}
}

func (c *Config) validateGit() []ValidationError {
	var errors []ValidationError
	for _, pattern := range c.Git.Skip {
		if !doublestar.ValidatePattern(pattern) {
			errors = append(errors, ValidationError{
				Path:    "git.skip",
				Message: fmt.Sprintf("invalid glob pattern '%s'", pattern),
			})
		}
	}
	return errors
}

func (c *Config) validateResolv() []ValidationError {
	var errors []ValidationError

	if c.Resolv.File == "" {
		errors = append(errors, ValidationError{
			Path:    "resolv.file",
			Message: "must not be empty",
		})
	}

	if net.ParseIP(c.Resolv.Nameserver) == nil {
		errors = append(errors, ValidationError{
			Path:    "resolv.nameserver",
			Message: fmt.Sprintf("must be an IP address, got '%s'", c.Resolv.Nameserver),
		})
	}

	return errors
}

func (c *Config) validateBench() []ValidationError {
	var errors []ValidationError

	if c.Bench.Size < 1 || c.Bench.Size > 8192 {
		errors = append(errors, ValidationError{
			Path:    "bench.size",
			Message: fmt.Sprintf("must be between 1 and 8192, got %d", c.Bench.Size),
		})
	}

	if c.Bench.Iterations < 1 {
		errors = append(errors, ValidationError{
			Path:    "bench.iterations",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Bench.Iterations),
		})
	}

	if c.Bench.Warmup < 0 {
		errors = append(errors, ValidationError{
			Path:    "bench.warmup",
			Message: fmt.Sprintf("must be non-negative, got %d", c.Bench.Warmup),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	validLevels := []string{"debug", "info", "warn", "error"}
	if contains(validLevels, c.Logging.Level) {
		return nil
	}

	return []ValidationError{{
		Path:    "logging.level",
		Message: fmt.Sprintf("must be one of %v, got '%s'", validLevels, c.Logging.Level),
	}}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
