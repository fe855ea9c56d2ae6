// Package render writes diagnosis records for the command line.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"github.com/gitguy/gitguy/internal/diagnosis"
)

// Format selects an output encoding.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts human, json or yaml (case-insensitive). The empty
// string means human.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatHuman:
		return FormatHuman, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want human, json or yaml)", s)
}

// Renderer writes records in one format.
type Renderer struct {
	Format Format
	// Color enables ANSI colors in human output.
	Color bool
	// Width wraps human output. Zero means 80.
	Width int
}

// Record writes a single diagnosis.
func (r Renderer) Record(w io.Writer, rec *diagnosis.Record) error {
	switch r.Format {
	case FormatJSON:
		return writeJSON(w, rec)
	case FormatYAML:
		return writeYAML(w, rec)
	default:
		r.human(w, rec)
		return nil
	}
}

// Records writes several diagnoses: a JSON array, a YAML sequence, or
// human blocks separated by rules.
func (r Renderer) Records(w io.Writer, recs []*diagnosis.Record) error {
	switch r.Format {
	case FormatJSON:
		return writeJSON(w, recs)
	case FormatYAML:
		return writeYAML(w, recs)
	default:
		for i, rec := range recs {
			if i > 0 {
				fmt.Fprintln(w, strings.Repeat("─", r.width()))
			}
			fmt.Fprintf(w, "[%d/%d]\n", i+1, len(recs))
			r.human(w, rec)
		}
		return nil
	}
}

// Resolution writes a merge conflict walkthrough.
func (r Renderer) Resolution(w io.Writer, res *diagnosis.Resolution) error {
	switch r.Format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatYAML:
		return writeYAML(w, res)
	}

	heading := r.color(color.FgCyan, color.Bold)
	cmd := r.color(color.FgGreen)
	faint := r.color(color.FgHiBlack)
	width := r.width()

	fmt.Fprintln(w)
	r.color(color.Bold).Fprintln(w, "MERGE CONFLICT")
	fmt.Fprintln(w, wrapText(res.Analysis, width, "   "))
	fmt.Fprintln(w)

	heading.Fprintln(w, "STEPS:")
	for i, s := range res.Steps {
		fmt.Fprintln(w, wrapText(fmt.Sprintf("%d. %s", i+1, s), width, "   "))
	}
	fmt.Fprintln(w)

	if len(res.Commands) > 0 {
		heading.Fprintln(w, "COMMANDS:")
		for _, c := range res.Commands {
			fmt.Fprint(w, "   $ ")
			cmd.Fprintln(w, c)
		}
		fmt.Fprintln(w)
	}
	r.bullets(w, heading, "TIPS:", res.Tips)
	r.bullets(w, heading, "COMMON MISTAKES:", res.CommonMistakes)

	source := "source: " + string(res.Source)
	if res.Playbook != "" {
		source += " (playbook " + res.Playbook + ")"
	}
	faint.Fprintln(w, source)
	return nil
}

func (r Renderer) bullets(w io.Writer, heading *color.Color, title string, items []string) {
	if len(items) == 0 {
		return
	}
	heading.Fprintln(w, title)
	for _, item := range items {
		fmt.Fprintln(w, wrapText("• "+item, r.width(), "   "))
	}
	fmt.Fprintln(w)
}

// Value writes any value in the structured formats. Human output is
// left to the caller and reported as an error here.
func (r Renderer) Value(w io.Writer, v any) error {
	switch r.Format {
	case FormatJSON:
		return writeJSON(w, v)
	case FormatYAML:
		return writeYAML(w, v)
	}
	return fmt.Errorf("render: no %s encoding for %T", r.Format, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (r Renderer) width() int {
	if r.Width > 0 {
		return r.Width
	}
	return 80
}

func (r Renderer) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (r Renderer) human(w io.Writer, rec *diagnosis.Record) {
	bold := r.color(color.Bold)
	heading := r.color(color.FgCyan, color.Bold)
	cmd := r.color(color.FgGreen)
	faint := r.color(color.FgHiBlack)
	width := r.width()

	fmt.Fprintln(w)
	r.severityColor(rec.Severity).Fprintf(w, "%s %s", SeverityIcon(rec.Severity), strings.ToUpper(rec.Severity.String()))
	fmt.Fprint(w, "  ")
	bold.Fprintln(w, rec.Category)
	fmt.Fprintln(w, wrapText(rec.Summary, width, "   "))
	fmt.Fprintln(w)

	if len(rec.Causes) > 0 {
		heading.Fprintln(w, "LIKELY CAUSES:")
		for _, c := range rec.Causes {
			fmt.Fprintln(w, wrapText("• "+c, width, "   "))
		}
		fmt.Fprintln(w)
	}

	if len(rec.Solutions) > 0 {
		heading.Fprintln(w, "HOW TO FIX:")
		for i, s := range rec.Solutions {
			fmt.Fprintln(w, wrapText(fmt.Sprintf("%d. %s", i+1, s), width, "   "))
		}
		fmt.Fprintln(w)
	}

	if len(rec.Commands) > 0 {
		heading.Fprintln(w, "COMMANDS:")
		for _, c := range rec.Commands {
			fmt.Fprint(w, "   $ ")
			cmd.Fprintln(w, c)
		}
		fmt.Fprintln(w)
	}

	if rec.Prevention != "" {
		heading.Fprintln(w, "PREVENTION:")
		fmt.Fprintln(w, wrapText(rec.Prevention, width, "   "))
		fmt.Fprintln(w)
	}

	if len(rec.References) > 0 {
		heading.Fprintln(w, "REFERENCES:")
		for _, ref := range rec.References {
			fmt.Fprintf(w, "   %s\n", ref)
		}
		fmt.Fprintln(w)
	}

	source := "source: " + string(rec.Source)
	if rec.PatternID != "" {
		source += " (pattern " + rec.PatternID + ")"
	}
	faint.Fprintln(w, source)
}

func (r Renderer) severityColor(s diagnosis.Severity) *color.Color {
	switch s {
	case diagnosis.SeverityCritical:
		return r.color(color.FgRed, color.Bold)
	case diagnosis.SeverityHigh:
		return r.color(color.FgRed)
	case diagnosis.SeverityMedium:
		return r.color(color.FgYellow)
	case diagnosis.SeverityLow:
		return r.color(color.FgGreen)
	default:
		return r.color(color.FgWhite)
	}
}

// SeverityIcon returns a colored dot for s.
func SeverityIcon(s diagnosis.Severity) string {
	switch s {
	case diagnosis.SeverityCritical:
		return "🔴"
	case diagnosis.SeverityHigh:
		return "🟠"
	case diagnosis.SeverityMedium:
		return "🟡"
	case diagnosis.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// wrapText wraps text at width, indenting every line. Continuation lines
// of a list item align under its text.
func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		hang := indent
		if len(words) > 1 && isListMarker(words[0]) {
			hang = indent + strings.Repeat(" ", len([]rune(words[0]))+1)
		}

		current := indent
		for _, word := range words {
			switch {
			case current == indent || current == hang:
				current += word
			case len([]rune(current))+len([]rune(word))+1 > width:
				result.WriteString(current + "\n")
				current = hang + word
			default:
				current += " " + word
			}
		}
		result.WriteString(current)
	}
	return result.String()
}

func isListMarker(w string) bool {
	if w == "•" || w == "-" {
		return true
	}
	return strings.HasSuffix(w, ".") && strings.Trim(w, "0123456789.") == "" && len(w) > 1
}
