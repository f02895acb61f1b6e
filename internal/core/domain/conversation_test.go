package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_String(t *testing.T) {
	assert.Equal(t, "system", RoleSystem.String())
	assert.Equal(t, "user", RoleUser.String())
	assert.Equal(t, "assistant", RoleAssistant.String())
	assert.Equal(t, "role(9)", Role(9).String())
}

func TestTurnConstructors(t *testing.T) {
	assert.Equal(t, Turn{Role: RoleSystem, Content: "s"}, SystemTurn("s"))
	assert.Equal(t, Turn{Role: RoleUser, Content: "u"}, UserTurn("u"))
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "a"}, AssistantTurn("a"))
}

func TestNewConversation_SeedsSystemTurn(t *testing.T) {
	c := NewConversation()

	turns := c.All()
	require.Len(t, turns, 1)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, DefaultSystemPrompt, turns[0].Content)
}

func TestConversation_Reset(t *testing.T) {
	c := NewConversation()
	require.NoError(t, c.Append(UserTurn("q1")))
	require.NoError(t, c.Append(AssistantTurn("a1")))
	require.NoError(t, c.Append(UserTurn("q2")))

	c.Reset()

	turns := c.All()
	require.Len(t, turns, 1)
	assert.Equal(t, RoleSystem, turns[0].Role)
}

func TestConversation_AppendAlternates(t *testing.T) {
	c := NewConversation()

	require.NoError(t, c.Append(UserTurn("What is the capital of France?")))
	require.NoError(t, c.Append(AssistantTurn("Paris.")))
	require.NoError(t, c.Append(UserTurn("And of Spain?")))
	require.NoError(t, c.Append(AssistantTurn("Madrid.")))

	turns := c.All()
	require.Len(t, turns, 5)
	assert.Equal(t, []Role{RoleSystem, RoleUser, RoleAssistant, RoleUser, RoleAssistant},
		[]Role{turns[0].Role, turns[1].Role, turns[2].Role, turns[3].Role, turns[4].Role})
	assert.Equal(t, "Madrid.", turns[4].Content)
}

func TestConversation_AppendRejectsOutOfOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup []Turn
		turn  Turn
	}{
		{"assistant before user", nil, AssistantTurn("a")},
		{"two user turns", []Turn{UserTurn("q")}, UserTurn("q2")},
		{"second system turn", nil, SystemTurn("again")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConversation()
			for _, turn := range tt.setup {
				require.NoError(t, c.Append(turn))
			}
			before := c.Len()

			err := c.Append(tt.turn)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, before, c.Len())
		})
	}
}

func TestConversation_AppendAfterClearReseeds(t *testing.T) {
	c := NewConversation()
	c.Clear()
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Append(UserTurn("hello")))

	turns := c.All()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, RoleUser, turns[1].Role)
}

func TestConversation_AllReturnsCopy(t *testing.T) {
	c := NewConversation()
	turns := c.All()
	turns[0].Content = "mutated"

	assert.Equal(t, DefaultSystemPrompt, c.All()[0].Content)
}

func TestNewConversationWithSystem(t *testing.T) {
	c := NewConversationWithSystem("Answer in French.")
	c.Reset()

	assert.Equal(t, "Answer in French.", c.All()[0].Content)
}
