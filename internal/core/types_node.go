package core

// NodeParameters is the typed configuration the host collects for one item.
type NodeParameters struct {
	Model       string      `json:"model"`
	UserMessage string      `json:"userMessage"`
	Options     NodeOptions `json:"options"`
}

// NodeOptions mirrors the "Advanced Options" collection of the node.
type NodeOptions struct {
	SystemPrompt        string     `json:"systemPrompt,omitempty"`
	AIAgentMode         bool       `json:"aiAgentMode,omitempty"`
	ToolUsage           bool       `json:"toolUsage,omitempty"`
	EnableThinking      bool       `json:"enableThinking,omitempty"`
	MaxTokens           *int       `json:"maxTokens,omitempty"`
	ResponseFormat      string     `json:"responseFormat,omitempty"`
	Temperature         *float64   `json:"temperature,omitempty"`
	TopP                *float64   `json:"topP,omitempty"`
	ThinkingBudget      *int       `json:"thinkingBudget,omitempty"`
	IncludeInputData    bool       `json:"includeInputData,omitempty"`
	ConversationHistory string     `json:"conversationHistory,omitempty"`
	Tools               []ToolSpec `json:"tools,omitempty"`
	ToolChoice          string     `json:"toolChoice,omitempty"`
	BatchMode           bool       `json:"batchMode,omitempty"`
}

// ToolSpec is a tool as entered by the user; Parameters is a JSON schema string.
type ToolSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  string `json:"parameters,omitempty"`
}

// ToolDefinition is a ToolSpec whose schema has been parsed.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  any
}

// RequestIntent is the validated, typed form of one upstream call.
type RequestIntent struct {
	Model               string
	Capability          ModelCapability
	SystemPrompt        string
	UserMessage         string
	UserTurns           []string
	ConversationHistory []ChatMessage
	Temperature         *float64
	TopP                *float64
	MaxTokens           *int
	EnableThinking      bool
	ThinkingBudget      *int
	Tools               []ToolDefinition
	ToolChoice          string
	AgentMode           bool
	ToolUsage           bool
	ResponseFormat      string
	IncludeInputData    bool
	BatchMode           bool
}

// ThinkingEnabled reports whether thinking parameters apply to this call.
func (i *RequestIntent) ThinkingEnabled() bool {
	return i.Capability.Thinking && i.EnableThinking
}

// ToolsEnabled reports whether tool definitions are sent with this call.
func (i *RequestIntent) ToolsEnabled() bool {
	return i.Capability.Tools && len(i.Tools) > 0
}

// ToolUsageHeader reports whether the vendor tool-usage header is sent.
func (i *RequestIntent) ToolUsageHeader() bool {
	return i.AgentMode && i.ToolUsage
}

// ProcessingMode returns the metadata label for how the intent was produced.
func (i *RequestIntent) ProcessingMode() string {
	if i.BatchMode {
		return ProcessingModeBatch
	}
	return ProcessingModeIndividual
}

// ParametersAt returns the parameters for item i. A single entry applies to every item.
func ParametersAt(params []NodeParameters, i int) NodeParameters {
	if len(params) == 0 {
		return NodeParameters{}
	}
	if i < len(params) {
		return params[i]
	}
	return params[0]
}
