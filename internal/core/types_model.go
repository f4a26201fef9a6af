package core

// ModelCapability describes which optional request features a model accepts.
type ModelCapability struct {
	Thinking bool `json:"thinking" yaml:"thinking"`
	Tools    bool `json:"tools" yaml:"tools"`
}

// ModelsConfig holds the capability table loaded from models.json or models.yaml.
type ModelsConfig struct {
	Models map[string]ModelCapability `json:"models" yaml:"models"`
}

// Lookup returns the capability entry for modelID. Unknown ids have no capabilities.
func (m ModelsConfig) Lookup(modelID string) ModelCapability {
	return m.Models[modelID]
}

// ModelInfo represents a single model entry in the models list.
type ModelInfo struct {
	ID               string `json:"id"`
	Object           string `json:"object"`
	OwnedBy          string `json:"owned_by"`
	SupportsThinking bool   `json:"supports_thinking"`
	SupportsTools    bool   `json:"supports_tools"`
}

// ModelList is the OpenAI-style model list response.
type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

// DefaultModelCapabilities is the built-in allow-list. Both the display ids and
// the raw upstream ids are listed since hosts have been seen sending either.
func DefaultModelCapabilities() map[string]ModelCapability {
	return map[string]ModelCapability{
		ModelFlashChat:             {},
		ModelFlashThinking:         {Thinking: true},
		ModelFlashChatRaw:          {},
		ModelFlashThinkingRaw:      {Thinking: true},
		ModelFlashChatTools:        {Tools: true},
		ModelFlashThinkingToolsRaw: {Thinking: true, Tools: true},
	}
}
