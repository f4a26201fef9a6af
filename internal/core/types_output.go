package core

// BinaryData is a binary attachment carried by a host item.
type BinaryData struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	FileName string `json:"fileName,omitempty"`
}

// Item is one host input item.
type Item struct {
	JSON   map[string]any        `json:"json"`
	Binary map[string]BinaryData `json:"binary,omitempty"`
}

// OutputItem is one host output item. JSON holds an *OutputRecord or *ErrorRecord.
type OutputItem struct {
	JSON   any                   `json:"json"`
	Binary map[string]BinaryData `json:"binary,omitempty"`
}

// OutputMetadata is attached to every successful output record.
type OutputMetadata struct {
	Provider       string `json:"provider"`
	ModelType      string `json:"modelType"`
	HasThinking    bool   `json:"hasThinking"`
	HasTools       bool   `json:"hasTools"`
	NodeVersion    int    `json:"nodeVersion"`
	ProcessingMode string `json:"processingMode,omitempty"`
}

// OutputRecord is the normalized result of one upstream call.
type OutputRecord struct {
	ID             string         `json:"id"`
	Model          string         `json:"model"`
	Content        any            `json:"content"`
	Usage          any            `json:"usage,omitempty"`
	FinishReason   string         `json:"finishReason,omitempty"`
	Timestamp      string         `json:"timestamp"`
	Thinking       string         `json:"thinking,omitempty"`
	ToolCalls      []any          `json:"toolCalls,omitempty"`
	AIAgentMode    bool           `json:"aiAgentMode,omitempty"`
	ResponseFormat string         `json:"responseFormat,omitempty"`
	ToolUsage      *bool          `json:"toolUsage,omitempty"`
	Metadata       OutputMetadata `json:"metadata"`
	OriginalInput  any            `json:"originalInput,omitempty"`
}

// ErrorMetadata describes a failed item.
type ErrorMetadata struct {
	Provider    string `json:"provider"`
	NodeVersion int    `json:"nodeVersion"`
	ErrorType   string `json:"errorType"`
	ItemIndex   *int   `json:"itemIndex,omitempty"`
}

// ErrorRecord replaces an output record when continue-on-fail is enabled.
type ErrorRecord struct {
	Error     string        `json:"error"`
	Success   bool          `json:"success"`
	Timestamp string        `json:"timestamp"`
	Metadata  ErrorMetadata `json:"metadata"`
}

// JSONWrappedContent is the agent "json" fallback when content is not valid JSON.
type JSONWrappedContent struct {
	Response string `json:"response"`
	Model    string `json:"model"`
	Usage    any    `json:"usage,omitempty"`
}

// StructuredMetadata is the metadata block of StructuredContent.
type StructuredMetadata struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Usage        any    `json:"usage,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
}

// StructuredContent is the agent "structured" content value.
type StructuredContent struct {
	Response string             `json:"response"`
	Metadata StructuredMetadata `json:"metadata"`
}

// ChatOptions are the per-call options of the model provider client.
type ChatOptions struct {
	Model          string   `json:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	MaxTokens      *int     `json:"maxTokens,omitempty"`
	TopP           *float64 `json:"topP,omitempty"`
	EnableThinking bool     `json:"enableThinking,omitempty"`
	ThinkingBudget *int     `json:"thinkingBudget,omitempty"`
}

// ChatResult is the flattened response of the model provider client.
type ChatResult struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	Usage        any    `json:"usage,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Thinking     string `json:"thinking,omitempty"`
}
