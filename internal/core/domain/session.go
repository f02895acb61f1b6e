package domain

// DefaultAnswerTemplate is the question-answering prompt. It tells the model
// to answer from the retrieved context when it is relevant and from its own
// knowledge otherwise, and to say so when it does not know.
const DefaultAnswerTemplate = `You are an assistant who says plainly when you do not know something, and explains what you do know so that a beginner can follow.
Answer politely.
If the information below is not related to what is being asked, answer from your own knowledge of the topic instead.

{context}

Question: {question}
Answer:`

// SessionStatus reports what a question-answering session is doing.
type SessionStatus int

// Session statuses, in the order a question moves through them.
const (
	// StatusIdle means no question is in progress.
	StatusIdle SessionStatus = iota

	// StatusLoading means the persisted index is being loaded.
	StatusLoading

	// StatusRetrieving means the question is being embedded and matched.
	StatusRetrieving

	// StatusGenerating means the language model is writing the answer.
	StatusGenerating
)

// String returns a short human-readable label.
func (s SessionStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading index"
	case StatusRetrieving:
		return "retrieving"
	case StatusGenerating:
		return "generating"
	default:
		return unknownDescription
	}
}
