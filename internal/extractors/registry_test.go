package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type stubExtractor struct {
	name  string
	types []string
}

func (s *stubExtractor) SupportedMIMETypes() []string { return s.types }

func (s *stubExtractor) Extract(_ context.Context, name string, content []byte) (*domain.Document, error) {
	return &domain.Document{Name: name, Pages: []string{s.name + ":" + string(content)}}, nil
}

func TestRegistry_Get(t *testing.T) {
	text := &stubExtractor{name: "text", types: []string{"text/plain"}}
	pdf := &stubExtractor{name: "pdf", types: []string{"application/pdf"}}
	r := NewRegistry(text, pdf)

	got, err := r.Get("text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Same(t, text, got)

	got, err = r.Get("APPLICATION/PDF")
	require.NoError(t, err)
	assert.Same(t, pdf, got)

	_, err = r.Get("image/png")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	first := &stubExtractor{name: "first", types: []string{"text/plain"}}
	second := &stubExtractor{name: "second", types: []string{"text/plain", "text/csv"}}
	r := NewRegistry(first)
	r.Register(second)

	got, err := r.Get("text/plain")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, []string{"text/csv", "text/plain"}, r.SupportedMIMETypes())
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content []byte
		want    string
	}{
		{"markdown extension", "notes.md", nil, "text/markdown"},
		{"upper case extension", "REPORT.PDF", nil, "application/pdf"},
		{"text extension", "a.txt", nil, "text/plain"},
		{"html extension", "page.htm", nil, "text/html"},
		{"sniffed pdf", "upload", []byte("%PDF-1.4\n"), "application/pdf"},
		{"sniffed text", "upload", []byte("just words"), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIMEType(tt.file, tt.content))
		})
	}
}
