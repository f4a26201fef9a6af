package resolve

import (
	"fmt"
	"strings"
	"time"

	"longcatnode/internal/cache"
	"longcatnode/internal/core"
	"longcatnode/internal/util"
	"longcatnode/internal/validate"
)

// ToolCache stores parsed tool lists between items and executions.
type ToolCache interface {
	GetTools(key string) ([]core.ToolDefinition, bool)
	SetTools(key string, tools []core.ToolDefinition)
}

// Resolver turns raw node parameters into request intents.
type Resolver struct {
	models  core.ModelsConfig
	cache   ToolCache
	metrics core.MetricsCollector
	logger  core.Logger
}

// NewResolver creates a resolver backed by the given capability table.
// A nil cache disables tool caching.
func NewResolver(models core.ModelsConfig, toolCache ToolCache, metrics core.MetricsCollector, logger core.Logger) *Resolver {
	if metrics == nil {
		metrics = &core.NopMetrics{}
	}
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &Resolver{
		models:  models,
		cache:   toolCache,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve builds the intent for a single item.
func (r *Resolver) Resolve(params core.NodeParameters, item core.Item) (core.RequestIntent, error) {
	intent, err := r.resolveShared(params)
	if err != nil {
		return core.RequestIntent{}, err
	}
	intent.UserMessage = ResolveUserMessage(params.UserMessage, item)
	return intent, nil
}

// ResolveBatch builds one intent for all items. Settings, system prompt and history
// come from the first item's parameters; every item contributes its user message
// as a separate user turn.
func (r *Resolver) ResolveBatch(params []core.NodeParameters, items []core.Item) (core.RequestIntent, error) {
	if len(items) == 0 {
		return core.RequestIntent{}, fmt.Errorf("batch mode requires at least one item")
	}

	intent, err := r.resolveShared(core.ParametersAt(params, 0))
	if err != nil {
		return core.RequestIntent{}, err
	}
	intent.BatchMode = true

	for i, item := range items {
		message := ResolveUserMessage(core.ParametersAt(params, i).UserMessage, item)
		if message == "" {
			r.logger.Debug("Batch item %d has no user message, skipping", i)
			continue
		}
		intent.UserTurns = append(intent.UserTurns, message)
	}

	return intent, nil
}

func (r *Resolver) resolveShared(params core.NodeParameters) (core.RequestIntent, error) {
	opts := params.Options

	model := strings.TrimSpace(params.Model)
	if model == "" {
		model = core.DefaultModel
	}
	capability := r.models.Lookup(model)

	intent := core.RequestIntent{
		Model:               model,
		Capability:          capability,
		ConversationHistory: ParseConversationHistory(opts.ConversationHistory, r.logger),
		Temperature:         clampFloat("temperature", opts.Temperature, core.MinTemperature, core.MaxTemperature, r.logger),
		TopP:                clampFloat("topP", opts.TopP, core.MinTopP, core.MaxTopP, r.logger),
		MaxTokens:           clampInt("maxTokens", opts.MaxTokens, core.MinMaxTokens, core.MaxMaxTokens, r.logger),
		AgentMode:           opts.AIAgentMode,
		ToolUsage:           opts.ToolUsage,
		ResponseFormat:      normalizeResponseFormat(opts.ResponseFormat),
		IncludeInputData:    opts.IncludeInputData,
		BatchMode:           opts.BatchMode,
	}
	if strings.TrimSpace(opts.SystemPrompt) != "" {
		intent.SystemPrompt = opts.SystemPrompt
	}

	if capability.Thinking {
		intent.EnableThinking = opts.EnableThinking
		if opts.EnableThinking && opts.ThinkingBudget != nil {
			budget := max(core.MinThinkingBudget, *opts.ThinkingBudget)
			intent.ThinkingBudget = &budget
		}
	} else if opts.EnableThinking {
		r.logger.Debug("Model %s does not support thinking, ignoring thinking options", model)
	}

	if capability.Tools {
		tools, err := r.resolveTools(opts.Tools)
		if err != nil {
			return core.RequestIntent{}, err
		}
		intent.Tools = tools
		if len(tools) > 0 {
			intent.ToolChoice = normalizeToolChoice(opts.ToolChoice)
		}
	} else if len(opts.Tools) > 0 {
		r.logger.Debug("Model %s does not support tools, ignoring %d tool definitions", model, len(opts.Tools))
	}

	return intent, nil
}

func (r *Resolver) resolveTools(specs []core.ToolSpec) ([]core.ToolDefinition, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	cacheKey := cache.GenerateToolsCacheKey(specs)
	if r.cache != nil {
		if tools, found := r.cache.GetTools(cacheKey); found {
			r.metrics.RecordCacheHit()
			return tools, nil
		}
		r.metrics.RecordCacheMiss()
	}

	parseStart := time.Now()
	tools, err := validate.ParseToolSpecs(specs, r.logger)
	r.metrics.RecordToolParsing(time.Since(parseStart))
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.SetTools(cacheKey, tools)
		r.logger.Debug("Cached %d tool definitions (key: %s)", len(tools), cache.TruncateCacheKey(cacheKey, 16))
	}
	return tools, nil
}

// ResolveUserMessage returns the configured message, or the first non-blank string
// among the item's message, content, text and input fields.
func ResolveUserMessage(configured string, item core.Item) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	for _, field := range core.UserMessageFallbackFields {
		if value, ok := item.JSON[field].(string); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// ParseConversationHistory decodes a JSON array of {role, content} objects.
// Anything unparseable yields an empty history.
func ParseConversationHistory(raw string, logger core.Logger) []core.ChatMessage {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var entries []any
	if err := util.UnmarshalJSON([]byte(raw), &entries); err != nil {
		logger.Debug("Ignoring invalid conversation history: %v", err)
		return nil
	}

	history := make([]core.ChatMessage, 0, len(entries))
	for i, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			logger.Debug("Ignoring history entry %d: not an object", i)
			continue
		}
		role, _ := obj["role"].(string)
		switch role {
		case core.RoleSystem, core.RoleUser, core.RoleAssistant:
		default:
			logger.Debug("Ignoring history entry %d: unsupported role %q", i, role)
			continue
		}
		history = append(history, core.ChatMessage{
			Role:    role,
			Content: util.ExtractTextContent(obj["content"]),
		})
	}
	return history
}

func normalizeResponseFormat(format string) string {
	switch format {
	case core.ResponseFormatJSON, core.ResponseFormatStructured:
		return format
	default:
		return core.ResponseFormatText
	}
}

func normalizeToolChoice(choice string) string {
	switch choice {
	case core.ToolChoiceNone, core.ToolChoiceRequired:
		return choice
	default:
		return core.ToolChoiceAuto
	}
}

func clampFloat(name string, value *float64, lo, hi float64, logger core.Logger) *float64 {
	if value == nil {
		return nil
	}
	clamped := min(max(*value, lo), hi)
	if clamped != *value {
		logger.Warn("%s %v out of range [%v, %v], clamped to %v", name, *value, lo, hi, clamped)
	}
	return &clamped
}

func clampInt(name string, value *int, lo, hi int, logger core.Logger) *int {
	if value == nil {
		return nil
	}
	clamped := min(max(*value, lo), hi)
	if clamped != *value {
		logger.Warn("%s %d out of range [%d, %d], clamped to %d", name, *value, lo, hi, clamped)
	}
	return &clamped
}
