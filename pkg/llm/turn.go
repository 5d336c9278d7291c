// Package llm defines the wire types shared between the reel client and a
// completion service.
package llm

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation. A conversation is an ordered,
// append-only sequence of turns, replayed verbatim to the service on every
// request; order is semantically significant.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserTurn builds a user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn builds an assistant turn.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}
