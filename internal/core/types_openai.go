package core

// ChatMessage represents a single message in a LongCat chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the upstream chat completion payload.
// Optional fields are pointers or omitempty slices so that unset values are never serialized.
type ChatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []ChatMessage `json:"messages"`
	Temperature    *float64      `json:"temperature,omitempty"`
	MaxTokens      *int          `json:"max_tokens,omitempty"`
	TopP           *float64      `json:"top_p,omitempty"`
	EnableThinking *bool         `json:"enable_thinking,omitempty"`
	ThinkingBudget *int          `json:"thinking_budget,omitempty"`
	Tools          []Tool        `json:"tools,omitempty"`
	ToolChoice     string        `json:"tool_choice,omitempty"`
}

// Tool represents a tool definition in a chat completion request.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction holds the function schema for a tool definition.
type ToolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
}

// Usage holds the token counts read from an upstream usage object.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ResponseMessage is the assistant message inside a response choice.
// Content is kept untyped because some upstream revisions return content parts.
// ToolCalls holds the upstream tool_calls entries as decoded, whatever their shape.
type ResponseMessage struct {
	Role      string `json:"role,omitempty"`
	Content   any    `json:"content,omitempty"`
	Thinking  string `json:"thinking,omitempty"`
	ToolCalls []any  `json:"tool_calls,omitempty"`
}

// ChatCompletionChoice represents a single choice in a chat completion response.
type ChatCompletionChoice struct {
	Index        int              `json:"index"`
	Message      *ResponseMessage `json:"message,omitempty"`
	FinishReason string           `json:"finish_reason,omitempty"`
}

// ChatCompletionResponse is the upstream non-streaming chat completion response.
// Usage is the upstream usage object as decoded and is passed through unchanged.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object,omitempty"`
	Created int64                  `json:"created,omitempty"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices,omitempty"`
	Usage   any                    `json:"usage,omitempty"`
}

// TokenUsage reads the token counts from Usage. Missing or non-numeric counts are zero.
func (r *ChatCompletionResponse) TokenUsage() Usage {
	if r == nil {
		return Usage{}
	}
	switch usage := r.Usage.(type) {
	case Usage:
		return usage
	case *Usage:
		if usage != nil {
			return *usage
		}
	case map[string]any:
		return Usage{
			PromptTokens:     intValue(usage["prompt_tokens"]),
			CompletionTokens: intValue(usage["completion_tokens"]),
			TotalTokens:      intValue(usage["total_tokens"]),
		}
	}
	return Usage{}
}

func intValue(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// FirstChoice returns choices[0] or nil when the upstream sent none.
func (r *ChatCompletionResponse) FirstChoice() *ChatCompletionChoice {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	return &r.Choices[0]
}

// FirstMessage returns choices[0].message or nil when missing at any level.
func (r *ChatCompletionResponse) FirstMessage() *ResponseMessage {
	choice := r.FirstChoice()
	if choice == nil {
		return nil
	}
	return choice.Message
}
