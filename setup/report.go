package setup

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var groupLabels = map[Kind]string{
	KindRole:     "roles",
	KindCategory: "categories",
	KindChannel:  "channels",
}

var statusGlyphs = map[Status]string{
	StatusPlanned:   "📋",
	StatusCompleted: "✅",
	StatusSkipped:   "⏭️",
	StatusFailed:    "❌",
}

// StatusGlyph returns the glyph displayed in front of an Action with the given Status.
func StatusGlyph(status Status) string {
	if glyph, ok := statusGlyphs[status]; ok {
		return glyph
	}
	return "❓"
}

// Render formats actions as a markdown report grouped by kind.
// Groups appear in the order roles, categories, channels and keep the append order of
// their actions. Empty groups are omitted.
func Render(actions []Action) string {
	title := cases.Title(language.English)

	var b strings.Builder
	b.WriteString("## Server Setup Report\n\n")

	for _, kind := range Kinds {
		written := false
		for _, action := range actions {
			if action.Kind != kind {
				continue
			}
			if !written {
				fmt.Fprintf(&b, "### %s\n", title.String(groupLabels[kind]))
				written = true
			}
			b.WriteString(renderLine(action))
			b.WriteString("\n")
		}
		if written {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderLine(action Action) string {
	name := action.Name
	if action.Parent != "" {
		name = action.Parent + " › " + action.Name
	}

	line := fmt.Sprintf("%s **%s** - %s", StatusGlyph(action.Status), name, action.Status)
	if action.Reason != "" {
		line += fmt.Sprintf(" (%s)", action.Reason)
	}
	if action.Error != "" {
		line += " - Error: " + action.Error
	}
	return line
}

// Summary counts actions per Status.
type Summary map[Status]int

// Summarize counts the given actions per Status.
func Summarize(actions []Action) Summary {
	summary := Summary{}
	for _, action := range actions {
		summary[action.Status]++
	}
	return summary
}

func (s Summary) String() string {
	return fmt.Sprintf("%d planned, %d completed, %d skipped, %d failed",
		s[StatusPlanned], s[StatusCompleted], s[StatusSkipped], s[StatusFailed])
}
