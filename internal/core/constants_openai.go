package core

// Upstream endpoint constants
const (
	DefaultBaseURL      = "https://api.longcat.chat"
	ChatCompletionsPath = "/openai/v1/chat/completions"
)

// Model identifiers. Display ids and raw upstream ids both appear in host configs.
const (
	ModelFlashChat             = "LongCat-Flash-Chat"
	ModelFlashThinking         = "LongCat-Flash-Thinking"
	ModelFlashChatRaw          = "longcat-flash-chat"
	ModelFlashThinkingRaw      = "longcat-flash-thinkingai-tx-0921-ppo"
	ModelFlashChatTools        = "longcat-flash-chat-tools"
	ModelFlashThinkingToolsRaw = "longcat-flash-thinkingai-tx-0921-ppo-tools"
	DefaultModel               = ModelFlashChat
)

// Model list constants
const (
	ModelObjectType     = "model"
	ModelOwner          = "longcat"
	ModelListObjectType = "list"
)

// Tool type constants
const (
	ToolTypeFunction = "function"
)

// Tool choice constants
const (
	ToolChoiceNone     = "none"
	ToolChoiceAuto     = "auto"
	ToolChoiceRequired = "required"
)

// Sampling and thinking limits
const (
	MinTemperature    = 0.0
	MaxTemperature    = 2.0
	MinTopP           = 0.0
	MaxTopP           = 1.0
	MinMaxTokens      = 1
	MaxMaxTokens      = 8192
	MinThinkingBudget = 1024
)
