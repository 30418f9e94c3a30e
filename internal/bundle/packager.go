package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"mlprobe/internal/facts"
	"mlprobe/internal/fsutil"
	"mlprobe/internal/logging"
	"mlprobe/internal/render"
)

// renderings are the snapshot views stored in every bundle.
var renderings = []struct {
	name string
	kind render.Kind
}{
	{"snapshot.json", render.KindJSON},
	{"snapshot.md", render.KindMarkdown},
	{"snapshot.txt", render.KindText},
	{"snapshot.yaml", render.KindYAML},
}

// Packager creates diagnostic ZIP packages
type Packager struct {
	config   Config
	opts     render.Options
	redactor *Redactor
	files    *fileCollector
	logger   *logging.Logger
	now      func() time.Time
	hostname func() (string, error)
}

// NewPackager creates a new diagnostic packager
func NewPackager(config Config, opts render.Options, logger *logging.Logger) *Packager {
	home, _ := os.UserHomeDir()
	redactor := NewRedactor(home)
	return &Packager{
		config:   config,
		opts:     opts,
		redactor: redactor,
		files:    &fileCollector{redactor: redactor, logger: logger},
		logger:   logger,
		now:      time.Now,
		hostname: os.Hostname,
	}
}

// Create writes the bundle for snap and returns its path. Unreadable local
// files are logged and left out; the snapshot renderings are always included.
func (p *Packager) Create(snap *facts.Snapshot) (string, error) {
	output := p.config.OutputPath
	if output == "" {
		output = DefaultOutputPath(p.now())
	}
	if p.config.Passphrase != "" {
		output += ".enc"
	}

	p.logger.Info("bundle.package.start", "Creating diagnostic bundle", map[string]interface{}{
		"output":    output,
		"encrypted": p.config.Passphrase != "",
	})

	allFiles := make(map[string][]byte)

	redacted := p.redactor.RedactSnapshot(snap)
	for _, r := range renderings {
		out, err := render.Render(redacted, r.kind, p.opts)
		if err != nil {
			return "", fmt.Errorf("failed to render %s: %w", r.name, err)
		}
		allFiles[r.name] = []byte(out + "\n")
	}

	configs, err := p.files.collectConfigs(p.config.ConfigPaths)
	if err != nil {
		p.logger.Error("bundle.package.config_error", "Failed to collect config", map[string]interface{}{
			"error": err.Error(),
		})
	}
	for path, content := range configs {
		allFiles[path] = content
	}

	logs, err := p.files.collectLog(p.config.LogFile)
	if err != nil {
		p.logger.Error("bundle.package.logs_error", "Failed to collect logs", map[string]interface{}{
			"error": err.Error(),
		})
	}
	for path, content := range logs {
		allFiles[path] = content
	}

	manifestJSON, err := json.MarshalIndent(p.createManifest(allFiles, snap.CollectedAt()), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	allFiles[ManifestName] = manifestJSON

	archive, err := createZIP(allFiles)
	if err != nil {
		return "", fmt.Errorf("failed to create ZIP: %w", err)
	}

	if p.config.Passphrase != "" {
		if archive, err = Encrypt(archive, p.config.Passphrase); err != nil {
			return "", fmt.Errorf("failed to encrypt bundle: %w", err)
		}
	}

	if err := fsutil.EnsureParentDirectory(output); err != nil {
		return "", err
	}
	if err := fsutil.AtomicWriteFile(output, archive, fsutil.DefaultFilePermissions, p.logger); err != nil {
		return "", err
	}

	p.logger.Info("bundle.package.complete", "Diagnostic bundle created", map[string]interface{}{
		"output":     output,
		"file_count": len(allFiles),
		"size_bytes": len(archive),
	})
	return output, nil
}

func (p *Packager) createManifest(files map[string][]byte, collectedAt time.Time) Manifest {
	hostname, err := p.hostname()
	if err != nil {
		hostname = facts.Unknown
	}

	manifest := Manifest{
		ID:             uuid.NewString(),
		Timestamp:      p.now().UTC().Format(time.RFC3339),
		CollectedAt:    collectedAt.UTC().Format(time.RFC3339),
		Host:           hostname,
		MlprobeVersion: p.config.Version,
		Files:          make([]ManifestFile, 0, len(files)),
	}

	for _, path := range sortedNames(files) {
		manifest.Files = append(manifest.Files, ManifestFile{
			Path:      path,
			SizeBytes: int64(len(files[path])),
			SHA256:    CalculateSHA256(files[path]),
		})
	}
	return manifest
}

// createZIP archives files in name order.
func createZIP(files map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, path := range sortedNames(files) {
		writer, err := zipWriter.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", path, err)
		}
		if _, err := writer.Write(files[path]); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
