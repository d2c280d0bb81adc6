// Package presentation renders command output.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	json   bool
}

// NewFormatter creates a new formatter. With asJSON set, results are
// written as indented JSON instead of text.
func NewFormatter(writer io.Writer, asJSON bool) *Formatter {
	return &Formatter{
		writer: writer,
		json:   asJSON,
	}
}

// FormatViewers writes the viewer list.
func (f *Formatter) FormatViewers(viewers []ViewerDTO) error {
	if f.json {
		return f.encode(viewers)
	}
	for _, v := range viewers {
		pos := "-"
		if v.Enabled {
			pos = fmt.Sprintf("%d", v.Position)
		}
		if _, err := fmt.Fprintf(f.writer, "%-3s %s\n", pos, v.Name); err != nil {
			return err
		}
	}
	return nil
}

// FormatImport writes an import summary.
func (f *Formatter) FormatImport(result ImportDTO) error {
	if f.json {
		return f.encode(result)
	}
	_, err := fmt.Fprintf(f.writer,
		"Imported %q into %s: %d dirs, %d files, %d bytes stored (%d truncated, %d skipped)\n",
		result.DataSource, result.Case, result.Dirs, result.Files, result.Bytes,
		result.Truncated, result.Skipped)
	return err
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
