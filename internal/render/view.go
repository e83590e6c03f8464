// Package render turns parse results, completions and diagnostics into
// terminal text, YAML or JSON.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NikitaCOEUR/argot/internal/grammar"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Render renders a parse report
func Render(r *Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Command: ") + valueStyle.Render(strings.Join(r.Commands, " ")))

	if len(r.Directives) > 0 {
		b.WriteString("\n" + renderDirectives(r))
	}
	if len(r.Values) > 0 {
		b.WriteString("\n" + renderValues(r))
	}
	if len(r.Unmatched) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Unmatched:") + "\n")
		b.WriteString("   " + warningStyle.Render(strings.Join(r.Unmatched, " ")))
	}

	b.WriteString("\n")
	if r.Succeeded {
		b.WriteString(successStyle.Render("✓ Parsed"))
	} else {
		b.WriteString(Diagnostics(r.Errors))
	}
	return b.String()
}

func renderDirectives(r *Report) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Directives:") + "\n")
	for _, d := range r.Directives {
		line := "   " + keyStyle.Render(d.Name)
		if d.Value != "" {
			line += " = " + valueStyle.Render(d.Value)
		}
		if !d.Declared {
			line += subtleStyle.Render(" (undeclared)")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderValues(r *Report) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Values:") + "\n")

	width := 0
	for _, v := range r.Values {
		width = max(width, len(v.Name))
	}
	for _, v := range r.Values {
		name := keyStyle.Render(fmt.Sprintf("%-*s", width, v.Name))
		if v.Error != "" {
			b.WriteString(fmt.Sprintf("   %s  %s\n", name, errorStyle.Render("✗ "+v.Error)))
			continue
		}
		b.WriteString(fmt.Sprintf("   %s  %s %s\n",
			name,
			valueStyle.Render(fmt.Sprint(v.Value)),
			subtleStyle.Render("("+v.Source+")")))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Diagnostics renders a numbered error list
func Diagnostics(errs []Diagnostic) string {
	if len(errs) == 0 {
		return successStyle.Render("✓ No errors")
	}

	var b strings.Builder
	b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %d error(s):", len(errs))) + "\n")
	for i, e := range errs {
		b.WriteString(fmt.Sprintf("   %d. %s %s", i+1, keyStyle.Render("["+e.Kind+"]"), e.Message))
		if e.Offset >= 0 {
			b.WriteString(subtleStyle.Render(fmt.Sprintf(" (at %d)", e.Offset)))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Completions renders one item per line. Documentation, when present, is
// aligned in a second column.
func Completions(items []Completion) string {
	width := 0
	for _, it := range items {
		width = max(width, lipgloss.Width(it.InsertText))
	}

	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it.Documentation == "" {
			lines = append(lines, it.InsertText)
			continue
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(it.InsertText))
		lines = append(lines, it.InsertText+pad+"  "+subtleStyle.Render(it.Documentation))
	}
	return strings.Join(lines, "\n")
}

// RenderSuggestions renders "did you mean" candidates
func RenderSuggestions(s Suggestions) string {
	if len(s.Candidates) == 0 {
		return warningStyle.Render(fmt.Sprintf("No close match for %q", s.Token))
	}
	return keyStyle.Render(fmt.Sprintf("Did you mean (for %q): ", s.Token)) +
		valueStyle.Render(strings.Join(s.Candidates, ", "))
}

// Check renders the outcome of a grammar file check
func Check(path string, result *grammar.ValidationResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Validating: ") + valueStyle.Render(path) + "\n\n")

	if result.Valid {
		b.WriteString(successStyle.Render("✅ Grammar is valid!"))
		return b.String()
	}

	b.WriteString(errorStyle.Render("❌ Grammar has errors:") + "\n")
	for i, e := range result.Errors {
		b.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, keyStyle.Render("["+e.Field+"]"), e.Message))
	}
	b.WriteString(fmt.Sprintf("\nFound %d error(s)", len(result.Errors)))
	return b.String()
}
