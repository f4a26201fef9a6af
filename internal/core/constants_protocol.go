package core

// Default config constants
const (
	DefaultPort             = "7860"
	DefaultGinMode          = "release"
	DefaultModelsConfigPath = "models.json"
	CORSMaxAge              = "86400"
)

// Content type and header constants
const (
	ContentTypeJSON         = "application/json"
	HeaderContentType       = "Content-Type"
	HeaderAuthorization     = "Authorization"
	HeaderXAPIKey           = "x-api-key"
	HeaderAllowToolUsage    = "PACKAGES_ALLOW_TOOL_USAGE"
	HeaderValueTrue         = "true"
	HeaderExecutionID       = "X-Execution-ID"
	AuthBearerPrefix        = "Bearer "
	HTTPMethodPost          = "POST"
	ContentBlockTypeText    = "text"
	ContentBlockTypeContent = "content"
)

// Role constants
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
	RoleSystem    = "system"
)

// Node identity constants
const (
	ProviderName = "LongCat"
	NodeVersion  = 2
)

// Response format constants
const (
	ResponseFormatText       = "text"
	ResponseFormatJSON       = "json"
	ResponseFormatStructured = "structured"
)

// Processing mode constants
const (
	ProcessingModeIndividual = "individual"
	ProcessingModeBatch      = "batch"
	// StatsModeChat labels /v1/chat calls in request history
	StatsModeChat = "chat"
)

// Error type labels used in error records
const (
	ErrorTypeTransport           = "TransportError"
	ErrorTypeMalformedToolSchema = "MalformedToolSchemaError"
	ErrorTypeGeneric             = "Error"
	ErrorTypeUnknown             = "Unknown"
)

// Fallback item fields tried when no user message is configured
var UserMessageFallbackFields = []string{"message", "content", "text", "input"}
