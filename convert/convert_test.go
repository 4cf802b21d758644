package convert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthrough(t *testing.T) {
	got, err := Passthrough{}.Convert(context.Background(), "a.md", []byte("\ufeff## A\r\nbody\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "## A\nbody\n", got)

	_, err = Passthrough{}.Convert(context.Background(), "a.md", []byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, ErrConversion)
}

func TestDispatcher(t *testing.T) {
	var pdfCalls []string
	pdf := ConverterFunc(func(ctx context.Context, name string, raw []byte) (string, error) {
		pdfCalls = append(pdfCalls, name)
		return "## Page 1\n\nconverted\n", nil
	})
	d := NewDispatcher(WithFormat("PDF", pdf))

	tests := []struct {
		name    string
		doc     string
		raw     []byte
		want    string
		wantErr error
	}{
		{name: "markdown", doc: "raw/policy.md", raw: []byte("## A\n"), want: "## A\n"},
		{name: "uppercase extension", doc: "NOTES.TXT", raw: []byte("plain"), want: "plain"},
		{name: "pdf by extension", doc: "raw/policy.pdf", raw: []byte("%PDF-1.4"), want: "## Page 1\n\nconverted\n"},
		{name: "pdf sniffed", doc: "upload.bin", raw: []byte("%PDF-1.7 ..."), want: "## Page 1\n\nconverted\n"},
		{name: "unsupported", doc: "sheet.xlsx", raw: []byte("PK"), wantErr: ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Convert(context.Background(), tt.doc, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrConversion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, []string{"raw/policy.pdf", "upload.bin"}, pdfCalls)
}

func TestDispatcher_PDFWithoutConverter(t *testing.T) {
	_, err := NewDispatcher().Convert(context.Background(), "raw/policy.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
