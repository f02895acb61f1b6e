package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Text(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{name: "no pages", pages: nil, want: ""},
		{name: "single page", pages: []string{"only page"}, want: "only page"},
		{name: "pages joined", pages: []string{"one", "two", "three"}, want: "one\n\ntwo\n\nthree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{Name: "a.pdf", Pages: tt.pages}
			assert.Equal(t, tt.want, doc.Text())
		})
	}
}

func TestJoinDocuments(t *testing.T) {
	docs := []Document{
		{Name: "a.txt", Pages: []string{"The capital of France is Paris."}},
		{Name: "empty.txt"},
		{Name: "b.pdf", Pages: []string{"Page one.", "Page two."}},
	}

	got := JoinDocuments(docs)

	assert.Equal(t, "The capital of France is Paris.\n\nPage one.\n\nPage two.", got)
}

func TestJoinDocuments_Empty(t *testing.T) {
	assert.Empty(t, JoinDocuments(nil))
	assert.Empty(t, JoinDocuments([]Document{{Name: "blank.txt"}}))
}
