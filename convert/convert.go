// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package convert turns raw documents into markdown.
//
// Converters report malformed input with errors wrapping ErrConversion. The
// Dispatcher selects a converter by file extension, falling back to content
// sniffing for PDF bodies stored under another name.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

var (
	// ErrConversion indicates the raw document could not be converted.
	ErrConversion = errors.New("document conversion failed")

	// ErrUnsupportedFormat indicates no converter handles the document format.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrConversion)
)

// Converter converts a raw document to markdown. name carries the file
// extension used to pick a format.
type Converter interface {
	Convert(ctx context.Context, name string, raw []byte) (string, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, name string, raw []byte) (string, error)

func (f ConverterFunc) Convert(ctx context.Context, name string, raw []byte) (string, error) {
	return f(ctx, name, raw)
}

// Passthrough returns markdown and plain text bodies unchanged apart from
// line-ending normalization.
type Passthrough struct{}

var _ Converter = Passthrough{}

func (Passthrough) Convert(ctx context.Context, name string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrConversion, name)
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return strings.TrimPrefix(text, "\ufeff"), nil
}

var pdfMagic = []byte("%PDF-")

// Dispatcher routes documents to converters by lowercase extension.
type Dispatcher struct {
	formats map[string]Converter
}

var _ Converter = (*Dispatcher)(nil)

// DispatcherOption registers formats on a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithFormat registers c for the extension ext (".pdf", "md", ...).
func WithFormat(ext string, c Converter) DispatcherOption {
	return func(d *Dispatcher) {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		d.formats[ext] = c
	}
}

// NewDispatcher creates a dispatcher that passes .md, .markdown and .txt
// through, plus any registered formats.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{formats: map[string]Converter{
		".md":       Passthrough{},
		".markdown": Passthrough{},
		".txt":      Passthrough{},
	}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Convert dispatches on the extension of name. Bodies starting with the PDF
// magic bytes are routed to the ".pdf" converter when one is registered.
func (d *Dispatcher) Convert(ctx context.Context, name string, raw []byte) (string, error) {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
	if bytes.HasPrefix(raw, pdfMagic) {
		if c, ok := d.formats[".pdf"]; ok {
			return c.Convert(ctx, name, raw)
		}
	}
	c, ok := d.formats[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, name)
	}
	return c.Convert(ctx, name, raw)
}
