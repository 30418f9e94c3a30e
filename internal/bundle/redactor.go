package bundle

import (
	"os"
	"regexp"
	"strings"

	"mlprobe/internal/facts"
)

// Redacted replaces a removed value.
const Redacted = "[REDACTED]"

// Redactor handles sensitive data redaction from text and snapshots
type Redactor struct {
	patterns []redactionPattern
	home     string
}

type redactionPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a redactor with common secret patterns. A non-empty
// home directory is replaced by "~" in every value.
func NewRedactor(home string) *Redactor {
	return &Redactor{
		home: strings.TrimRight(home, string(os.PathSeparator)),
		patterns: []redactionPattern{
			{
				regex:       regexp.MustCompile(`(?i)export\s+([A-Z_]*(?:KEY|TOKEN|SECRET|PASSWORD)[A-Z_]*)\s*=\s*["']?([^"'\s]+)["']?`),
				replacement: `export $1=` + Redacted,
			},
			{
				regex:       regexp.MustCompile(`(?i)(^|[^A-Z_])(api[_-]?key|token|secret|password|passphrase)\s*[:=]\s*["']?([^"'\s]+)["']?`),
				replacement: `$1$2: ` + Redacted,
			},
			{
				regex:       regexp.MustCompile(`(?i)Bearer\s+([A-Za-z0-9_\-\.]+)`),
				replacement: `Bearer ` + Redacted,
			},
			{
				regex:       regexp.MustCompile(`(?i)Authorization:\s*Basic\s+([A-Za-z0-9+/=]+)`),
				replacement: `Authorization: Basic ` + Redacted,
			},
			{
				regex:       regexp.MustCompile(`(?i)([a-z][a-z0-9+.-]*)://([^:/@\s]+):([^@\s]+)@`),
				replacement: `$1://$2:` + Redacted + `@`,
			},
		},
	}
}

// Redact applies all redaction patterns to the input text
func (r *Redactor) Redact(input string) string {
	result := input
	for _, pattern := range r.patterns {
		result = pattern.regex.ReplaceAllString(result, pattern.replacement)
	}
	if r.home != "" && r.home != "/" {
		result = strings.ReplaceAll(result, r.home, "~")
	}
	return result
}

// IsLikelySensitive checks if a fact name or line suggests a secret
func IsLikelySensitive(line string) bool {
	lowerLine := strings.ToLower(line)
	sensitiveKeywords := []string{
		"password", "passphrase", "secret", "token", "api_key", "apikey",
		"private_key", "privatekey", "credential", "auth",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerLine, keyword) {
			return true
		}
	}
	return false
}

// RedactSnapshot returns a frozen copy of snap with sensitive facts blanked
// and every string value passed through Redact.
func (r *Redactor) RedactSnapshot(snap *facts.Snapshot) *facts.Snapshot {
	b := facts.NewSnapshotBuilder(snap.CollectedAt())
	for _, section := range snap.Sections() {
		r.copyMap(b.Section(section.Name), section.Facts)
	}
	return b.Build()
}

func (r *Redactor) copyMap(dst, src *facts.Map) {
	for _, key := range src.Keys() {
		v, _ := src.Get(key)
		if IsLikelySensitive(key) && v.IsScalar() {
			dst.Set(key, facts.String(Redacted))
			continue
		}
		dst.Set(key, r.redactValue(v))
	}
}

func (r *Redactor) redactValue(v facts.Value) facts.Value {
	switch v.Kind() {
	case facts.KindString:
		s, _ := v.Str()
		return facts.String(r.Redact(s))
	case facts.KindList:
		items := make([]facts.Value, 0, len(v.Items()))
		for _, item := range v.Items() {
			items = append(items, r.redactValue(item))
		}
		return facts.List(items...)
	case facts.KindMap:
		src, _ := v.Map()
		dst := facts.NewMap()
		r.copyMap(dst, src)
		return facts.Object(dst)
	default:
		return v
	}
}
