package convert

import (
	"longcatnode/internal/core"
)

// BuildMessages assembles the message list in wire order:
// system prompt, history, then the user message or batch user turns.
// Empty system and user entries are never emitted.
func BuildMessages(intent *core.RequestIntent) []core.ChatMessage {
	messages := make([]core.ChatMessage, 0, len(intent.ConversationHistory)+len(intent.UserTurns)+2)

	if intent.SystemPrompt != "" {
		messages = append(messages, core.ChatMessage{Role: core.RoleSystem, Content: intent.SystemPrompt})
	}

	messages = append(messages, intent.ConversationHistory...)

	if intent.BatchMode {
		for _, turn := range intent.UserTurns {
			if turn != "" {
				messages = append(messages, core.ChatMessage{Role: core.RoleUser, Content: turn})
			}
		}
		return messages
	}

	if intent.UserMessage != "" {
		messages = append(messages, core.ChatMessage{Role: core.RoleUser, Content: intent.UserMessage})
	}
	return messages
}

// BuildChatRequest converts an intent into the upstream request body.
// Optional fields stay nil unless the intent sets them, so they are omitted on the wire.
func BuildChatRequest(intent *core.RequestIntent) core.ChatCompletionRequest {
	request := core.ChatCompletionRequest{
		Model:       intent.Model,
		Messages:    BuildMessages(intent),
		Temperature: intent.Temperature,
		MaxTokens:   intent.MaxTokens,
		TopP:        intent.TopP,
	}

	if intent.ThinkingEnabled() {
		enabled := true
		request.EnableThinking = &enabled
		if intent.ThinkingBudget != nil {
			budget := max(core.MinThinkingBudget, *intent.ThinkingBudget)
			request.ThinkingBudget = &budget
		}
	}

	if intent.ToolsEnabled() {
		request.Tools = BuildTools(intent.Tools)
		request.ToolChoice = intent.ToolChoice
		if request.ToolChoice == "" {
			request.ToolChoice = core.ToolChoiceAuto
		}
	}

	return request
}

// BuildTools wraps tool definitions in the function tool envelope.
func BuildTools(definitions []core.ToolDefinition) []core.Tool {
	tools := make([]core.Tool, 0, len(definitions))
	for _, def := range definitions {
		tools = append(tools, core.Tool{
			Type: core.ToolTypeFunction,
			Function: core.ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return tools
}

// BuildHeaders returns the upstream request headers.
func BuildHeaders(intent *core.RequestIntent, creds core.Credentials) map[string]string {
	headers := map[string]string{
		core.HeaderAuthorization: core.AuthBearerPrefix + creds.APIKey,
		core.HeaderContentType:   core.ContentTypeJSON,
	}
	if intent.ToolUsageHeader() {
		headers[core.HeaderAllowToolUsage] = core.HeaderValueTrue
	}
	return headers
}

// BuildUpstreamRequest assembles everything the transport needs for one call.
func BuildUpstreamRequest(intent *core.RequestIntent, creds core.Credentials) core.UpstreamRequest {
	return core.UpstreamRequest{
		Method:  core.HTTPMethodPost,
		URL:     creds.Endpoint(),
		Headers: BuildHeaders(intent, creds),
		Body:    BuildChatRequest(intent),
	}
}
