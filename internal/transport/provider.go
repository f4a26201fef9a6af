package transport

import (
	"context"
	"fmt"
	"sort"

	"longcatnode/internal/convert"
	"longcatnode/internal/core"
	"longcatnode/internal/normalize"
	"longcatnode/internal/util"
)

// Provider is a standalone LongCat chat client for callers outside the node.
type Provider struct {
	transport core.Transport
	creds     core.Credentials
	models    core.ModelsConfig
}

// NewProvider creates a provider that sends requests through transport.
func NewProvider(transport core.Transport, creds core.Credentials, models core.ModelsConfig) *Provider {
	return &Provider{
		transport: transport,
		creds:     creds,
		models:    models,
	}
}

// Chat sends messages as-is and flattens the first choice.
func (p *Provider) Chat(ctx context.Context, messages []core.ChatMessage, opts core.ChatOptions) (*core.ChatResult, error) {
	if !p.ValidateConfig() {
		return nil, fmt.Errorf("LongCat API key is not configured")
	}

	model := opts.Model
	if model == "" {
		model = core.DefaultModel
	}

	intent := &core.RequestIntent{
		Model:               model,
		Capability:          p.models.Lookup(model),
		ConversationHistory: messages,
		Temperature:         opts.Temperature,
		MaxTokens:           opts.MaxTokens,
		TopP:                opts.TopP,
		EnableThinking:      opts.EnableThinking,
		ThinkingBudget:      opts.ThinkingBudget,
	}

	body, err := p.transport.Do(ctx, convert.BuildUpstreamRequest(intent, p.creds))
	if err != nil {
		return nil, err
	}
	resp, err := normalize.DecodeResponse(body)
	if err != nil {
		return nil, err
	}

	result := &core.ChatResult{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: resp.Usage,
	}
	if choice := resp.FirstChoice(); choice != nil {
		result.FinishReason = choice.FinishReason
	}
	if message := resp.FirstMessage(); message != nil {
		result.Content = util.ExtractTextContent(message.Content)
		result.Thinking = message.Thinking
	}
	return result, nil
}

// AvailableModels lists the model ids of the capability table.
func (p *Provider) AvailableModels() []string {
	ids := make([]string, 0, len(p.models.Models))
	for id := range p.models.Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ValidateConfig reports whether an API key is configured.
func (p *Provider) ValidateConfig() bool {
	return p.creds.Valid()
}
