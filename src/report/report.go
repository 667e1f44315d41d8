// Package report renders listing rows as plain lines, a table, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Format selects how rows are rendered.
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an --output value. Empty means FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported --output: %s (want text|table|json|yaml)", s)
	}
}

// Row is a single listing entry.
type Row interface {
	Fields() []string
}

// Writer streams text rows as they arrive and buffers the other formats
// until Flush.
type Writer struct {
	format  Format
	out     io.Writer
	headers []string
	rows    []Row
}

func NewWriter(format Format, out io.Writer, headers ...string) *Writer {
	return &Writer{format: format, out: out, headers: headers, rows: []Row{}}
}

// Write renders row immediately in text mode and queues it otherwise.
func (w *Writer) Write(row Row) error {
	if w.format == FormatText || w.format == "" {
		_, err := fmt.Fprintln(w.out, strings.Join(row.Fields(), ", "))
		return err
	}
	w.rows = append(w.rows, row)
	return nil
}

// Flush writes any buffered rows.
func (w *Writer) Flush() error {
	switch w.format {
	case FormatText, "":
		return nil
	case FormatTable:
		return w.renderTable()
	case FormatJSON:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(w.rows)
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(w.rows); err != nil {
			return fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported --output: %s", w.format)
	}
}

func (w *Writer) renderTable() error {
	rows := make([][]string, 0, len(w.rows))
	for _, r := range w.rows {
		rows = append(rows, r.Fields())
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers(w.headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w.out, t)
	return err
}
