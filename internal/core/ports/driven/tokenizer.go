package driven

// Tokenizer splits text into model tokens.
//
// Implementations may include:
//   - tiktoken (cl100k_base, the OpenAI encoding)
//   - word (whitespace-delimited words, no external data)
type Tokenizer interface {
	// Split returns the tokens of text as substrings.
	// Concatenating the result must reproduce text exactly.
	Split(text string) []string

	// Count returns the number of tokens in text.
	Count(text string) int

	// Name identifies the encoding.
	Name() string
}
