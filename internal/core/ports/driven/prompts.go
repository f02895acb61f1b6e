package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer is the question-answering template.
	// It must contain the {context} and {question} slots.
	PromptAnswer = "answer"

	// PromptChatSystem is the system turn that seeds every conversation.
	// This prompt has no slots.
	PromptChatSystem = "chat_system"
)
