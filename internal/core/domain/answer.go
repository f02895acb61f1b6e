package domain

// Answer is the result of one synthesised response.
type Answer struct {
	// Text is the model's answer.
	Text string

	// Chunks are the retrieved chunks placed in the prompt, in retrieval order.
	Chunks []Chunk

	// Model is the model that produced the answer.
	Model string

	// Usage is the token usage reported by the model.
	Usage Usage

	// Cost is the dollar cost of the invocation.
	Cost float64
}
