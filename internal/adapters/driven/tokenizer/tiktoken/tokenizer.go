// Package tiktoken provides a BPE tokenizer using OpenAI's tiktoken encodings.
package tiktoken

import (
	"fmt"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding is the encoding used by gpt-3.5-turbo, gpt-4 and the
// ada-002 embedding model.
const DefaultEncoding = "cl100k_base"

// Tokenizer splits text into BPE tokens.
type Tokenizer struct {
	name string
	enc  *tiktoken.Tiktoken
}

// New loads the named encoding. The encoding data is downloaded on first use
// and cached in TIKTOKEN_CACHE_DIR.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}

	return &Tokenizer{name: encoding, enc: enc}, nil
}

// Name identifies the encoding.
func (t *Tokenizer) Name() string {
	return t.name
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.EncodeOrdinary(text))
}

// Split returns the tokens of text as substrings.
// Tokens that end inside a multi-byte character are merged with the following
// tokens until the piece decodes to valid UTF-8.
func (t *Tokenizer) Split(text string) []string {
	if text == "" {
		return nil
	}

	ids := t.enc.EncodeOrdinary(text)
	pieces := make([]string, 0, len(ids))
	pending := make([]int, 0, 4)

	for _, id := range ids {
		pending = append(pending, id)
		s := t.enc.Decode(pending)
		if utf8.ValidString(s) {
			pieces = append(pieces, s)
			pending = pending[:0]
		}
	}
	if len(pending) > 0 {
		pieces = append(pieces, t.enc.Decode(pending))
	}

	return pieces
}
