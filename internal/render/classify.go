package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mlprobe/internal/facts"
)

// Importance drives how a fact value is colored.
type Importance string

// Importance levels
const (
	Critical  Importance = "critical"
	Warning   Importance = "warning"
	Positive  Importance = "positive"
	Highlight Importance = "highlight"
	Info      Importance = "info"
	Neutral   Importance = "neutral"
)

var (
	criticalKeys  = []string{"error", "cuda available", "failure", "critical", "cuda version", "cudnn version", "gpu count"}
	warningKeys   = []string{"warning", "deprecated", "memory used", "cpu usage", "deterministic"}
	positiveKeys  = []string{"available", "supported", "enabled", "success", "capability"}
	highlightKeys = []string{"version", "model", "device", "capability", "platform", "total memory", "release"}

	criticalValues = []string{"error", "failure", "not available"}
	warningValues  = []string{"warning", "deprecated"}

	usagePercent = regexp.MustCompile(`\((\d+(?:\.\d+)?)%\)`)
)

// Classify rates a fact by its key and value. Key matching is case-insensitive
// and by substring.
func Classify(key string, v facts.Value) Importance {
	k := strings.ToLower(key)

	if b, ok := v.BoolValue(); ok {
		if b {
			return Positive
		}
		if containsAny(k, criticalKeys) {
			return Critical
		}
		return Warning
	}

	s, isString := v.Str()
	if isString {
		lower := strings.ToLower(s)
		switch {
		case containsAny(lower, criticalValues):
			return Critical
		case containsAny(lower, warningValues):
			return Warning
		case strings.Contains(k, "version") && s != "":
			return Highlight
		case k == "model" || strings.Contains(k, "name"):
			return Highlight
		}

		if strings.Contains(k, "memory") && strings.Contains(k, "used") {
			if m := usagePercent.FindStringSubmatch(s); m != nil {
				percent, _ := strconv.ParseFloat(m[1], 64)
				switch {
				case percent > 80:
					return Critical
				case percent > 60:
					return Warning
				default:
					return Positive
				}
			}
		}
	}

	switch {
	case containsAny(k, criticalKeys):
		return Info
	case containsAny(k, warningKeys):
		return Warning
	case containsAny(k, positiveKeys):
		return Positive
	case containsAny(k, highlightKeys):
		return Highlight
	}
	return Neutral
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Styles are the lipgloss styles of the tree view.
type Styles struct {
	Critical   lipgloss.Style
	Warning    lipgloss.Style
	Positive   lipgloss.Style
	Highlight  lipgloss.Style
	Info       lipgloss.Style
	Neutral    lipgloss.Style
	Section    lipgloss.Style
	Subsection lipgloss.Style
	Key        lipgloss.Style
	Dim        lipgloss.Style
	Header     lipgloss.Style
	Border     lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	color := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Styles{
		Critical:   color("1").Bold(true),
		Warning:    color("3"),
		Positive:   color("2"),
		Highlight:  color("14").Bold(true),
		Info:       color("6"),
		Neutral:    color("7"),
		Section:    color("5").Bold(true),
		Subsection: color("4").Bold(true),
		Key:        color("15").Italic(true),
		Dim:        color("249"),
		Header:     color("13").Bold(true).Underline(true),
		Border:     color("4"),
	}
}

// For returns the style of an importance level.
func (s Styles) For(imp Importance) lipgloss.Style {
	switch imp {
	case Critical:
		return s.Critical
	case Warning:
		return s.Warning
	case Positive:
		return s.Positive
	case Highlight:
		return s.Highlight
	case Info:
		return s.Info
	default:
		return s.Neutral
	}
}
