package transport

import (
	"context"
	"errors"
	"testing"

	"longcatnode/internal/core"

	"github.com/bytedance/sonic"
)

type fakeTransport struct {
	requests []core.UpstreamRequest
	body     []byte
	err      error
}

func (f *fakeTransport) Do(_ context.Context, req core.UpstreamRequest) ([]byte, error) {
	f.requests = append(f.requests, req)
	return f.body, f.err
}

func testModels() core.ModelsConfig {
	return core.ModelsConfig{Models: core.DefaultModelCapabilities()}
}

func TestProvider_Chat(t *testing.T) {
	fake := &fakeTransport{body: []byte(`{
		"id":"c1","model":"LongCat-Flash-Thinking",
		"choices":[{"index":0,"message":{"role":"assistant","content":"answer","thinking":"hmm"},"finish_reason":"stop"}],
		"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}
	}`)}
	provider := NewProvider(fake, core.Credentials{APIKey: "k"}, testModels())

	budget := 10
	result, err := provider.Chat(context.Background(),
		[]core.ChatMessage{{Role: core.RoleSystem, Content: "sys"}, {Role: core.RoleUser, Content: "q"}},
		core.ChatOptions{Model: core.ModelFlashThinking, EnableThinking: true, ThinkingBudget: &budget},
	)
	if err != nil {
		t.Fatalf("不应该有错误: %v", err)
	}
	if result.Content != "answer" || result.Thinking != "hmm" || result.FinishReason != "stop" {
		t.Errorf("结果不正确: %+v", result)
	}
	if usage, ok := result.Usage.(map[string]any); !ok || usage["total_tokens"] != float64(3) {
		t.Errorf("usage 不正确: %+v", result.Usage)
	}

	req, ok := fake.requests[0].Body.(core.ChatCompletionRequest)
	if !ok {
		t.Fatalf("请求体类型错误: %T", fake.requests[0].Body)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != core.RoleSystem {
		t.Errorf("消息应原样发送: %+v", req.Messages)
	}
	if req.ThinkingBudget == nil || *req.ThinkingBudget != core.MinThinkingBudget {
		t.Errorf("thinking_budget 应为 %d: %v", core.MinThinkingBudget, req.ThinkingBudget)
	}
}

func TestProvider_ChatDefaultModel(t *testing.T) {
	fake := &fakeTransport{body: []byte(`{"id":"c1","model":"LongCat-Flash-Chat"}`)}
	provider := NewProvider(fake, core.Credentials{APIKey: "k"}, testModels())

	result, err := provider.Chat(context.Background(), []core.ChatMessage{{Role: core.RoleUser, Content: "q"}}, core.ChatOptions{EnableThinking: true})
	if err != nil {
		t.Fatalf("不应该有错误: %v", err)
	}
	if result.Content != "" {
		t.Errorf("缺少 choices 时内容应为空，实际 %q", result.Content)
	}

	body, _ := sonic.Marshal(fake.requests[0].Body)
	var wire map[string]any
	_ = sonic.Unmarshal(body, &wire)
	if wire["model"] != core.DefaultModel {
		t.Errorf("默认模型应为 %s，实际 %v", core.DefaultModel, wire["model"])
	}
	if _, ok := wire["enable_thinking"]; ok {
		t.Error("非思考模型不应发送 enable_thinking")
	}
}

func TestProvider_ChatErrors(t *testing.T) {
	unconfigured := NewProvider(&fakeTransport{}, core.Credentials{APIKey: "  "}, testModels())
	if _, err := unconfigured.Chat(context.Background(), nil, core.ChatOptions{}); err == nil {
		t.Error("未配置 API key 应返回错误")
	}

	failing := NewProvider(&fakeTransport{err: &core.TransportError{StatusCode: 500}}, core.Credentials{APIKey: "k"}, testModels())
	_, err := failing.Chat(context.Background(), nil, core.ChatOptions{})
	var transportErr *core.TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("应透传 TransportError，实际 %v", err)
	}

	garbage := NewProvider(&fakeTransport{body: []byte("not json")}, core.Credentials{APIKey: "k"}, testModels())
	if _, err := garbage.Chat(context.Background(), nil, core.ChatOptions{}); !errors.As(err, &transportErr) {
		t.Errorf("非 JSON 响应应返回 TransportError，实际 %v", err)
	}
}

func TestProvider_AvailableModelsAndValidate(t *testing.T) {
	provider := NewProvider(&fakeTransport{}, core.Credentials{APIKey: "k"}, testModels())
	models := provider.AvailableModels()
	if len(models) != len(core.DefaultModelCapabilities()) {
		t.Errorf("模型数量不正确: %v", models)
	}
	for i := 1; i < len(models); i++ {
		if models[i-1] > models[i] {
			t.Errorf("模型列表应有序: %v", models)
		}
	}
	if !provider.ValidateConfig() {
		t.Error("已配置 key 时应返回 true")
	}
	if NewProvider(&fakeTransport{}, core.Credentials{}, testModels()).ValidateConfig() {
		t.Error("未配置 key 时应返回 false")
	}
}
