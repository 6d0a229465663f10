package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/todo-go/internal/task"
	"github.com/nibzard/todo-go/internal/utils"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an output format. Empty input means text.
func ParseFormat(s string) (Format, error) {
	switch utils.NormalizeName(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q, must be one of: text, json, yaml", s)
	}
}

// Styles colors row parts.
type Styles struct {
	Check  lipgloss.Style
	Done   lipgloss.Style
	High   lipgloss.Style
	Medium lipgloss.Style
	Low    lipgloss.Style
	Due    lipgloss.Style
	Urgent lipgloss.Style
	Tag    lipgloss.Style
	Muted  lipgloss.Style
}

// NewStyles builds styles for r. Writers that are not terminals get plain
// text.
func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		Check:  r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Done:   r.NewStyle().Foreground(lipgloss.Color("#6C7086")).Strikethrough(true),
		High:   r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Medium: r.NewStyle().Foreground(lipgloss.Color("#FAB387")),
		Low:    r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Due:    r.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
		Urgent: r.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true),
		Tag:    r.NewStyle().Foreground(lipgloss.Color("#94E2D5")),
		Muted:  r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

// Line renders a row as a single line of text.
func (s Styles) Line(row Row) string {
	var b strings.Builder

	if row.Completed {
		b.WriteString(s.Check.Render("[x]"))
	} else {
		b.WriteString("[ ]")
	}
	b.WriteByte(' ')
	b.WriteString(s.Muted.Render(row.ShortID))
	b.WriteByte(' ')
	if row.Completed {
		b.WriteString(s.Done.Render(row.Text))
	} else {
		b.WriteString(row.Text)
	}

	if row.Priority != "" {
		b.WriteString("  ")
		b.WriteString(s.priorityStyle(row.Priority).Render(string(row.Priority)))
	}
	if row.DueLabel != "" {
		b.WriteString("  ")
		if row.Urgent {
			b.WriteString(s.Urgent.Render(row.DueLabel + " !"))
		} else {
			b.WriteString(s.Due.Render(row.DueLabel))
		}
	}
	for _, tag := range row.Tags {
		b.WriteByte(' ')
		b.WriteString(s.Tag.Render("#" + tag))
	}
	return b.String()
}

func (s Styles) priorityStyle(p task.Priority) lipgloss.Style {
	switch p {
	case task.PriorityHigh:
		return s.High
	case task.PriorityLow:
		return s.Low
	default:
		return s.Medium
	}
}

// Write renders rows to w in format.
func Write(w io.Writer, rows []Row, format Format) error {
	if rows == nil {
		rows = []Row{}
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	case FormatText, "":
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "No tasks.")
			return err
		}
		styles := NewStyles(lipgloss.NewRenderer(w))
		for _, row := range rows {
			if _, err := fmt.Fprintln(w, styles.Line(row)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteStats renders stats to w in format.
func WriteStats(w io.Writer, st task.Stats, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, st)
	case FormatYAML:
		return writeYAML(w, st)
	case FormatText, "":
		_, err := fmt.Fprintln(w, StatsLine(st))
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
