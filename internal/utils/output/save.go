// Package output writes search responses as JSON, CSV, HTML or Markdown.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/law-makers/pricewatch/pkg/models"
)

// Format is an export format
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output extension %q (want .json, .csv, .html or .md)", filepath.Ext(path))
	}
}

// Write encodes resp to w in format
func Write(w io.Writer, resp *models.SearchResponse, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, resp)
	case FormatCSV:
		return WriteCSV(w, resp)
	case FormatHTML:
		return WriteHTML(w, resp)
	case FormatMarkdown:
		return WriteMarkdown(w, resp)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Save writes resp to path in the format implied by its extension
func Save(resp *models.SearchResponse, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(file, resp, format); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
