package normalize

import (
	"time"

	"longcatnode/internal/core"
	"longcatnode/internal/util"
	"longcatnode/internal/validate"
)

// Input carries the host data echoed back when includeInputData is set.
type Input struct {
	// OriginalInput is the item json, or the list of all item jsons in batch mode.
	OriginalInput any
	Binary        map[string]core.BinaryData
}

// Normalizer reshapes upstream responses into host output items.
type Normalizer struct {
	logger core.Logger
	now    func() time.Time
}

// NewNormalizer creates a normalizer stamping records with the current time.
func NewNormalizer(logger core.Logger) *Normalizer {
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &Normalizer{logger: logger, now: time.Now}
}

// Normalize builds the output item for one upstream response.
// Missing choices, message or content default to empty values and never fail.
func (n *Normalizer) Normalize(resp *core.ChatCompletionResponse, intent *core.RequestIntent, in Input) core.OutputItem {
	if resp == nil {
		resp = &core.ChatCompletionResponse{}
	}

	var (
		content      string
		thinking     string
		toolCalls    []any
		finishReason string
	)
	if choice := resp.FirstChoice(); choice != nil {
		finishReason = choice.FinishReason
	}
	if message := resp.FirstMessage(); message != nil {
		content = util.ExtractTextContent(message.Content)
		thinking = message.Thinking
		toolCalls = message.ToolCalls
	}

	model := resp.Model
	if model == "" {
		model = intent.Model
	}

	for i, tc := range toolCalls {
		if err := validate.ValidateToolCall(tc); err != nil {
			n.logger.Warn("Tool call %d in response %s is malformed: %v", i, resp.ID, err)
		}
	}

	record := &core.OutputRecord{
		ID:           resp.ID,
		Model:        model,
		Content:      content,
		Usage:        resp.Usage,
		FinishReason: finishReason,
		Timestamp:    util.FormatTimestamp(n.now()),
		Thinking:     thinking,
		ToolCalls:    toolCalls,
		Metadata: core.OutputMetadata{
			Provider:       core.ProviderName,
			ModelType:      model,
			HasThinking:    intent.ThinkingEnabled(),
			HasTools:       intent.ToolsEnabled(),
			NodeVersion:    core.NodeVersion,
			ProcessingMode: intent.ProcessingMode(),
		},
	}

	if intent.AgentMode {
		toolUsage := intent.ToolUsage
		record.Content = FormatAgentContent(content, intent.ResponseFormat, model, resp.Usage, finishReason, n.logger)
		record.AIAgentMode = true
		record.ResponseFormat = intent.ResponseFormat
		record.ToolUsage = &toolUsage
	}

	item := core.OutputItem{JSON: record}
	if intent.IncludeInputData {
		record.OriginalInput = in.OriginalInput
		if !intent.BatchMode && len(in.Binary) > 0 {
			item.Binary = in.Binary
		}
	}
	return item
}

// FormatAgentContent shapes content for agent consumers according to responseFormat.
func FormatAgentContent(content, format, model string, usage any, finishReason string, logger core.Logger) any {
	switch format {
	case core.ResponseFormatJSON:
		if util.IsValidJSON(content) {
			return content
		}
		wrapped, err := util.MarshalJSON(core.JSONWrappedContent{
			Response: content,
			Model:    model,
			Usage:    usage,
		})
		if err != nil {
			logger.Warn("Failed to wrap agent content as JSON: %v", err)
			return content
		}
		return string(wrapped)
	case core.ResponseFormatStructured:
		return core.StructuredContent{
			Response: content,
			Metadata: core.StructuredMetadata{
				Provider:     core.ProviderName,
				Model:        model,
				Usage:        usage,
				FinishReason: finishReason,
			},
		}
	default:
		return content
	}
}

// Error builds the record emitted in place of an output when continue-on-fail is set.
// itemIndex is nil for batch failures.
func (n *Normalizer) Error(err error, itemIndex *int) core.OutputItem {
	message := "Unknown error occurred"
	if err != nil {
		message = err.Error()
	}
	return core.OutputItem{JSON: &core.ErrorRecord{
		Error:     message,
		Success:   false,
		Timestamp: util.FormatTimestamp(n.now()),
		Metadata: core.ErrorMetadata{
			Provider:    core.ProviderName,
			NodeVersion: core.NodeVersion,
			ErrorType:   core.ErrorTypeName(err),
			ItemIndex:   itemIndex,
		},
	}}
}
