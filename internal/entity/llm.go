package entity

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatMessage is one turn of the exchange sent to the model
type ChatMessage struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a function invocation requested by the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolParam describes one string parameter of a declared tool
type ToolParam struct {
	Name        string
	Description string
	Required    bool
}

// ToolSpec declares a function the model may call
type ToolSpec struct {
	Name        string
	Description string
	Params      []ToolParam
}

// ModelReply is either DirectText or ToolCalls
type ModelReply interface {
	isModelReply()
}

// DirectText is a final natural-language answer
type DirectText struct {
	Text string
}

// ToolCalls asks the caller to run the listed tools and report back.
// Content carries any text the model emitted alongside the calls.
type ToolCalls struct {
	Calls   []ToolCall
	Content string
}

func (DirectText) isModelReply() {}
func (ToolCalls) isModelReply()  {}
