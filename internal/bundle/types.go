// Package bundle packs a redacted snapshot, its renderings and the local
// configuration into a single diagnostic archive.
package bundle

import "time"

// EnvPassphrase supplies the passphrase of an encrypted bundle.
const EnvPassphrase = "MLPROBE_BUNDLE_PASSPHRASE"

// ManifestName is the archive entry holding the manifest.
const ManifestName = "manifest.json"

// Manifest describes the archive contents.
type Manifest struct {
	ID             string         `json:"id"`
	Timestamp      string         `json:"timestamp"`
	CollectedAt    string         `json:"collected_at"`
	Host           string         `json:"host"`
	MlprobeVersion string         `json:"mlprobe_version"`
	Files          []ManifestFile `json:"files"`
}

// ManifestFile represents a file in the archive
type ManifestFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
}

// Config configures bundle creation
type Config struct {
	OutputPath string
	// ConfigPaths are configuration files copied (redacted) into config/.
	ConfigPaths []string
	// LogFile is copied (redacted) into logs/ when set.
	LogFile string
	Version string
	// Passphrase encrypts the archive when non-empty.
	Passphrase string
}

// DefaultOutputPath names a bundle after the time it was created.
func DefaultOutputPath(now time.Time) string {
	return "mlprobe-bundle-" + now.UTC().Format("20060102-150405") + ".zip"
}
