package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"mlprobe/internal/configdir"
)

const (
	systemConfigFile = "config.yaml"
	userConfigDir    = ".mlprobe"
	userConfigFile   = "config.yaml"
)

// Load loads and merges configuration from system and user files
// Priority: defaults < system config < user config
func Load() (Config, error) {
	cfg := DefaultConfig()

	systemPath := SystemConfigPath()
	if err := mergeConfigFile(&cfg, systemPath); err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to load system config: %w", err)
		}
	}

	if userPath := UserConfigPath(); userPath != "" {
		if err := mergeConfigFile(&cfg, userPath); err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to load user config: %w", err)
			}
		}
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// LoadFrom loads configuration from a specific file path
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := mergeConfigFile(&cfg, path); err != nil {
		return cfg, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// ProbeTimeout returns the per-subprocess deadline.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probes.TimeoutSeconds) * time.Second
}

func mergeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is constructed from trusted sources
	if err != nil {
		return err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfig(cfg, &overlay)

	return nil
}

// mergeConfig merges non-zero values from src into dst. Lists present in src
// replace the destination list entirely.
func mergeConfig(dst, src *Config) {
	mergeString(&dst.Output.Format, src.Output.Format)
	mergeString(&dst.Output.Title, src.Output.Title)

	mergeList(&dst.Render.PriorityKeys, src.Render.PriorityKeys)
	mergeInt(&dst.Render.Indent, src.Render.Indent)

	mergeList(&dst.Probes.Disabled, src.Probes.Disabled)
	mergeInt(&dst.Probes.TimeoutSeconds, src.Probes.TimeoutSeconds)

	mergeString(&dst.Python.Executable, src.Python.Executable)
	mergeList(&dst.Python.RelatedPackages, src.Python.RelatedPackages)

	mergeList(&dst.Git.Skip, src.Git.Skip)

	mergeString(&dst.Resolv.File, src.Resolv.File)
	mergeString(&dst.Resolv.Nameserver, src.Resolv.Nameserver)

	mergeInt(&dst.Bench.Size, src.Bench.Size)
	mergeInt(&dst.Bench.Iterations, src.Bench.Iterations)
	mergeInt(&dst.Bench.Warmup, src.Bench.Warmup)

	mergeString(&dst.Logging.Level, src.Logging.Level)
	mergeString(&dst.Logging.File, src.Logging.File)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

func mergeList(dst *[]string, src []string) {
	if src != nil {
		*dst = append([]string(nil), src...)
	}
}

func formatValidationErrors(errors []ValidationError) string {
	if len(errors) == 0 {
		return ""
	}
	if len(errors) == 1 {
		return errors[0].Error()
	}
	result := fmt.Sprintf("%d validation errors:\n", len(errors))
	for _, err := range errors {
		result += "  - " + err.Error() + "\n"
	}
	return result
}

// SystemConfigPath returns the path to the system configuration file
func SystemConfigPath() string {
	return filepath.Join(configdir.ConfigDir(), systemConfigFile)
}

// UserConfigPath returns the path to the user configuration file
func UserConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, userConfigDir, userConfigFile)
}
