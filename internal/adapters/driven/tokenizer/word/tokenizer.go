// Package word provides a whitespace word tokenizer.
// It needs no encoding data, so it is used offline and as a fallback when the
// tiktoken encoding cannot be loaded.
package word

import (
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Tokenizer treats each whitespace-delimited word as one token.
// Whitespace after a word stays with that word and leading whitespace joins
// the first word, so tokens concatenate to the original text.
type Tokenizer struct{}

// New creates a word tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Name identifies the encoding.
func (t *Tokenizer) Name() string {
	return "word"
}

// Split returns the words of text with their surrounding whitespace.
// Text without any word is returned as a single piece.
func (t *Tokenizer) Split(text string) []string {
	if text == "" {
		return nil
	}

	var tokens []string
	start := 0
	inWord := false

	for i, r := range text {
		space := unicode.IsSpace(r)
		if inWord && space {
			// A word just ended; the token runs until the next word starts.
			inWord = false
			continue
		}
		if !inWord && !space {
			if i > start && hasWord(text[start:i]) {
				tokens = append(tokens, text[start:i])
				start = i
			}
			inWord = true
		}
	}

	if start < len(text) {
		rest := text[start:]
		if len(tokens) > 0 && !hasWord(rest) {
			tokens[len(tokens)-1] += rest
		} else {
			tokens = append(tokens, rest)
		}
	}

	return tokens
}

// Count returns the number of words in text.
func (t *Tokenizer) Count(text string) int {
	n := 0
	inWord := false
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

func hasWord(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
