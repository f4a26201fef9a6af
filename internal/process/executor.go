package process

import (
	"context"
	"fmt"
	"time"

	"longcatnode/internal/convert"
	"longcatnode/internal/core"
	"longcatnode/internal/normalize"
	"longcatnode/internal/resolve"
)

// Executor runs the node over a list of host items.
type Executor struct {
	resolver   *resolve.Resolver
	transport  core.Transport
	creds      core.Credentials
	normalizer *normalize.Normalizer
	metrics    core.MetricsCollector
	logger     core.Logger
}

// ExecutorConfig holds the executor dependencies
type ExecutorConfig struct {
	Resolver   *resolve.Resolver
	Transport  core.Transport
	Creds      core.Credentials
	Normalizer *normalize.Normalizer
	Metrics    core.MetricsCollector
	Logger     core.Logger
}

// ExecuteInput is one node invocation.
type ExecuteInput struct {
	Items []core.Item
	// Parameters holds one entry per item, or a single entry applied to every item.
	Parameters     []core.NodeParameters
	ContinueOnFail bool
}

// NewExecutor creates a new executor
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = &core.NopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &core.NopMetrics{}
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = normalize.NewNormalizer(cfg.Logger)
	}

	return &Executor{
		resolver:   cfg.Resolver,
		transport:  cfg.Transport,
		creds:      cfg.Creds,
		normalizer: cfg.Normalizer,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}, nil
}

// Execute returns output items in item order. Batch mode, decided by the first
// item's parameters, makes a single upstream call for all items.
func (e *Executor) Execute(ctx context.Context, in ExecuteInput) ([]core.OutputItem, error) {
	if len(in.Items) == 0 {
		return []core.OutputItem{}, nil
	}
	if len(in.Parameters) == 0 {
		return nil, fmt.Errorf("node parameters are required")
	}

	if core.ParametersAt(in.Parameters, 0).Options.BatchMode {
		return e.executeBatch(ctx, in)
	}
	return e.executeIndividual(ctx, in)
}

func (e *Executor) executeIndividual(ctx context.Context, in ExecuteInput) ([]core.OutputItem, error) {
	outputs := make([]core.OutputItem, 0, len(in.Items))

	for i, item := range in.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		output, err := e.executeItem(ctx, core.ParametersAt(in.Parameters, i), item)
		if err != nil {
			if !in.ContinueOnFail {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			e.logger.Warn("Item %d failed, continuing: %v", i, err)
			index := i
			outputs = append(outputs, e.normalizer.Error(err, &index))
			continue
		}
		outputs = append(outputs, output)
	}

	return outputs, nil
}

func (e *Executor) executeItem(ctx context.Context, params core.NodeParameters, item core.Item) (core.OutputItem, error) {
	intent, err := e.resolver.Resolve(params, item)
	if err != nil {
		return core.OutputItem{}, err
	}

	resp, err := e.call(ctx, &intent)
	if err != nil {
		return core.OutputItem{}, err
	}

	return e.normalizer.Normalize(resp, &intent, normalize.Input{
		OriginalInput: item.JSON,
		Binary:        item.Binary,
	}), nil
}

func (e *Executor) executeBatch(ctx context.Context, in ExecuteInput) ([]core.OutputItem, error) {
	output, err := e.executeBatchCall(ctx, in)
	if err != nil {
		if !in.ContinueOnFail {
			return nil, fmt.Errorf("batch: %w", err)
		}
		e.logger.Warn("Batch of %d items failed, continuing: %v", len(in.Items), err)
		return []core.OutputItem{e.normalizer.Error(err, nil)}, nil
	}
	return []core.OutputItem{output}, nil
}

func (e *Executor) executeBatchCall(ctx context.Context, in ExecuteInput) (core.OutputItem, error) {
	intent, err := e.resolver.ResolveBatch(in.Parameters, in.Items)
	if err != nil {
		return core.OutputItem{}, err
	}

	resp, err := e.call(ctx, &intent)
	if err != nil {
		return core.OutputItem{}, err
	}

	originals := make([]map[string]any, 0, len(in.Items))
	for _, item := range in.Items {
		originals = append(originals, item.JSON)
	}

	return e.normalizer.Normalize(resp, &intent, normalize.Input{OriginalInput: originals}), nil
}

// call performs one upstream request and records it in metrics.
func (e *Executor) call(ctx context.Context, intent *core.RequestIntent) (*core.ChatCompletionResponse, error) {
	if !e.creds.Valid() {
		return nil, fmt.Errorf("LongCat API key is not configured")
	}

	request := convert.BuildUpstreamRequest(intent, e.creds)
	e.logger.Debug("Calling %s: model=%s, mode=%s", request.URL, intent.Model, intent.ProcessingMode())

	start := time.Now()
	body, err := e.transport.Do(ctx, request)
	var resp *core.ChatCompletionResponse
	if err == nil {
		resp, err = normalize.DecodeResponse(body)
	}
	e.metrics.RecordRequest(err == nil, time.Since(start), intent.Model, intent.ProcessingMode())

	if err != nil {
		return nil, err
	}
	e.metrics.RecordTokenUsage(resp.TokenUsage())
	return resp, nil
}
