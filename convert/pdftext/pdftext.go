// Package pdftext converts PDF documents to markdown by extracting page text.
//
// Each page with text becomes a "## Page N" section so the title segmenter
// has headings to split on. Layout, tables and images are not preserved.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/poiesic/clausewise/convert"
)

// Converter extracts plain text from PDF bodies.
type Converter struct {
	logger *slog.Logger
}

var _ convert.Converter = (*Converter)(nil)

// New creates a PDF converter. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{logger: logger.With("component", "pdftext")}
}

// Convert extracts the text of every page in order.
func (c *Converter) Convert(ctx context.Context, name string, raw []byte) (out string, err error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: %s is empty", convert.ErrConversion, name)
	}
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("%w: %s: %v", convert.ErrConversion, name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", convert.ErrConversion, name, err)
	}

	var b strings.Builder
	fonts := make(map[string]*pdf.Font)
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, fontName := range page.Fonts() {
			if _, ok := fonts[fontName]; !ok {
				font := page.Font(fontName)
				fonts[fontName] = &font
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: %s page %d: %w", convert.ErrConversion, name, i, err)
		}
		text = normalize(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "## Page %d\n\n%s\n\n", i, text)
	}

	c.logger.Debug("converted pdf", "name", name, "pages", pages, "bytes", b.Len())
	return b.String(), nil
}

// normalize trims trailing space on every line and drops leading and trailing blank lines.
// Lines starting with "## " are indented so page text cannot open a section.
func normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.HasPrefix(line, "## ") {
			line = " " + line
		}
		lines[i] = line
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
