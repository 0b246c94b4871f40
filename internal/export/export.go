package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdview/internal/assets"
	"github.com/alnah/go-mdview/internal/view"
)

// ErrUnsupportedFormat indicates an output format other than html or pdf.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat converts "html" or "pdf" (case-insensitive) to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatHTML:
		return FormatHTML, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath infers the format from an output file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Exporter produces standalone output from a view.
type Exporter struct {
	Assets   assets.AssetLoader
	PDF      *PDFConverter // created on first PDF export when nil
	ExtraCSS string
}

// Export renders s in format.
func (e *Exporter) Export(ctx context.Context, s *view.State, format Format) ([]byte, error) {
	loader := e.Assets
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}

	page, err := Standalone(ctx, s, loader, e.ExtraCSS)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatHTML:
		return []byte(page), nil
	case FormatPDF:
		if e.PDF == nil {
			e.PDF = NewPDFConverter(nil)
		}
		return e.PDF.ToPDF(ctx, page)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Close releases the PDF browser, if one was started.
func (e *Exporter) Close() error {
	if e.PDF == nil {
		return nil
	}
	return e.PDF.Close()
}
