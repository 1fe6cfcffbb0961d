package llm

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn of a conversation, oldest first
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Completion is what every provider returns for a single invocation
type Completion struct {
	Reply      string `json:"reply"`
	TokensUsed int    `json:"tokens_used"`
	Model      string `json:"model"`
}
