package domain

import "fmt"

// DefaultSystemPrompt seeds every conversation.
const DefaultSystemPrompt = "You are a helpful assistant."

// Role tags a conversation turn.
type Role int

// Conversation roles.
const (
	// RoleSystem carries instructions for the model.
	RoleSystem Role = iota

	// RoleUser carries a question from the user.
	RoleUser

	// RoleAssistant carries a model answer.
	RoleAssistant
)

// String returns the lowercase role name used by chat APIs.
func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Turn is one entry of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// SystemTurn creates a system turn.
func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// UserTurn creates a user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn creates an assistant turn.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// Conversation is the ordered, append-only log of turns for one session.
//
// The first turn, when present, is a System turn. User and Assistant turns
// follow it and alternate starting with User.
type Conversation struct {
	system string
	turns  []Turn
}

// NewConversation creates a conversation seeded with the default system turn.
func NewConversation() *Conversation {
	return NewConversationWithSystem(DefaultSystemPrompt)
}

// NewConversationWithSystem creates a conversation seeded with the given
// system prompt.
func NewConversationWithSystem(system string) *Conversation {
	c := &Conversation{system: system}
	c.Reset()
	return c
}

// Reset discards all turns and leaves a single System turn.
func (c *Conversation) Reset() {
	c.turns = []Turn{SystemTurn(c.system)}
}

// Clear discards every turn, including the System turn.
func (c *Conversation) Clear() {
	c.turns = nil
}

// Append adds a turn to the end of the conversation.
// Appending to a cleared conversation re-seeds the System turn first.
// Turns that would break the System, User, Assistant ordering are rejected.
func (c *Conversation) Append(turn Turn) error {
	if len(c.turns) == 0 && turn.Role != RoleSystem {
		c.Reset()
	}

	if want := c.next(); turn.Role != want {
		return fmt.Errorf("%w: expected %s turn, got %s", ErrInvalidInput, want, turn.Role)
	}

	c.turns = append(c.turns, turn)
	return nil
}

// next returns the role the next appended turn must have.
func (c *Conversation) next() Role {
	if len(c.turns) == 0 {
		return RoleSystem
	}
	switch c.turns[len(c.turns)-1].Role {
	case RoleSystem, RoleAssistant:
		return RoleUser
	case RoleUser:
		return RoleAssistant
	default:
		return RoleUser
	}
}

// All returns a copy of every turn in chronological order.
func (c *Conversation) All() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}
