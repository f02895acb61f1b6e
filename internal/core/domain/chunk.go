package domain

// Chunk is a contiguous, token-bounded substring of ingested text.
// It is the unit of embedding and retrieval.
type Chunk struct {
	// Index is the ordinal position of the chunk in the source text.
	Index int

	// Text is the chunk content, including any overlap prefix.
	Text string

	// Overlap is the byte length of the prefix repeated from the previous chunk.
	Overlap int

	// Tokens is the token count of Text.
	Tokens int
}

// Body returns the chunk text without the overlap prefix.
// Concatenating Body over all chunks reconstructs the source text.
func (c Chunk) Body() string {
	if c.Overlap <= 0 || c.Overlap > len(c.Text) {
		return c.Text
	}
	return c.Text[c.Overlap:]
}
