package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"longcatnode/internal/core"
)

type countingStorage struct {
	mu        sync.Mutex
	saveCount int
	loaded    *core.RequestStats
	loadErr   error
}

func (s *countingStorage) SaveStats(_ *core.RequestStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCount++
	return nil
}

func (s *countingStorage) LoadStats() (*core.RequestStats, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.loaded != nil {
		return s.loaded, nil
	}
	return &core.RequestStats{}, nil
}

func (s *countingStorage) Close() error { return nil }

func (s *countingStorage) getSaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}

func newTestMetrics(t *testing.T, historySize int, storage core.StorageInterface) *MetricsService {
	t.Helper()
	ms := NewMetricsService(MetricsConfig{
		SaveInterval: time.Second,
		HistorySize:  historySize,
		Storage:      storage,
		Logger:       &core.NopLogger{},
	})
	t.Cleanup(func() { _ = ms.Close() })
	return ms
}

func TestMetricsService_RecordRequest(t *testing.T) {
	ms := newTestMetrics(t, 10, nil)

	ms.RecordRequest(true, 100*time.Millisecond, core.ModelFlashChat, core.ProcessingModeIndividual)
	ms.RecordRequest(false, 200*time.Millisecond, core.ModelFlashChat, core.ProcessingModeIndividual)
	ms.RecordRequest(true, 150*time.Millisecond, core.ModelFlashThinking, core.ProcessingModeBatch)

	stats := ms.GetRequestStats()
	if stats.TotalRequests != 3 {
		t.Errorf("Expected 3 total requests, got %d", stats.TotalRequests)
	}
	if stats.SuccessfulRequests != 2 {
		t.Errorf("Expected 2 successful requests, got %d", stats.SuccessfulRequests)
	}
	if stats.FailedRequests != 1 {
		t.Errorf("Expected 1 failed request, got %d", stats.FailedRequests)
	}
	if stats.TotalResponseTime != 450 {
		t.Errorf("期望总响应时间 450ms，实际 %d", stats.TotalResponseTime)
	}
	if len(stats.RequestHistory) != 3 {
		t.Fatalf("期望 3 条历史，实际 %d", len(stats.RequestHistory))
	}
	last := stats.RequestHistory[2]
	if last.Model != core.ModelFlashThinking || last.Mode != core.ProcessingModeBatch {
		t.Errorf("历史记录字段不正确: %+v", last)
	}
}

func TestMetricsService_GetQPS(t *testing.T) {
	ms := newTestMetrics(t, 10, nil)

	if qps := ms.GetQPS(); qps != 0 {
		t.Errorf("无请求时 QPS 应为 0，实际 %f", qps)
	}
	for range 6 {
		ms.RecordRequest(true, time.Millisecond, "m", core.ProcessingModeIndividual)
	}
	if qps := ms.GetQPS(); qps != 0.1 {
		t.Errorf("期望 QPS 0.1，实际 %f", qps)
	}
}

func TestMetricsService_MaxHistorySize(t *testing.T) {
	ms := newTestMetrics(t, 3, nil)

	for range 5 {
		ms.RecordRequest(true, 100*time.Millisecond, "model", core.ProcessingModeIndividual)
	}

	stats := ms.GetRequestStats()
	if len(stats.RequestHistory) > 3 {
		t.Errorf("History should be capped at 3, got %d", len(stats.RequestHistory))
	}
}

func TestMetricsService_DefaultHistorySize(t *testing.T) {
	ms := newTestMetrics(t, 0, nil)
	if ms.maxHistorySize != core.HistoryBufferSize {
		t.Errorf("非正容量应使用默认值 %d，实际 %d", core.HistoryBufferSize, ms.maxHistorySize)
	}
}

func TestMetricsService_CacheStats(t *testing.T) {
	ms := newTestMetrics(t, 10, nil)

	ms.RecordCacheHit()
	ms.RecordCacheHit()
	ms.RecordCacheMiss()
	ms.RecordToolParsing(3 * time.Millisecond)

	stats := ms.GetCacheStats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("命中统计不正确: %+v", stats)
	}
	if stats.ToolParses != 1 || stats.ToolParseTime != 3000 {
		t.Errorf("解析统计不正确: %+v", stats)
	}
}

func TestMetricsService_TokenStats(t *testing.T) {
	ms := newTestMetrics(t, 10, nil)

	ms.RecordTokenUsage(core.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5})
	ms.RecordTokenUsage(core.Usage{PromptTokens: 1, TotalTokens: 1})

	want := TokenStats{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6}
	if got := ms.GetTokenStats(); got != want {
		t.Errorf("期望 %+v，实际 %+v", want, got)
	}
}

func TestGetPeriodStats(t *testing.T) {
	now := time.Now()
	history := []core.RequestRecord{
		{Timestamp: now.Add(-30 * time.Minute), Success: true, ResponseTime: 100},
		{Timestamp: now.Add(-2 * time.Hour), Success: false, ResponseTime: 300},
		{Timestamp: now.Add(-48 * time.Hour), Success: true, ResponseTime: 200},
	}

	periods := GetPeriodStats(history, 1, 24, 24*7)
	if periods[1].Requests != 1 || periods[1].SuccessRate != 100 {
		t.Errorf("1h 统计不正确: %+v", periods[1])
	}
	if periods[24].Requests != 2 || periods[24].SuccessRate != 50 || periods[24].AvgResponseTime != 200 {
		t.Errorf("24h 统计不正确: %+v", periods[24])
	}
	if periods[24*7].Requests != 3 {
		t.Errorf("7d 统计不正确: %+v", periods[24*7])
	}
	if GetPeriodStats(history) != nil {
		t.Error("无周期时应返回 nil")
	}
}

func TestCountByModel(t *testing.T) {
	counts := CountByModel([]core.RequestRecord{{Model: "a"}, {Model: "b"}, {Model: "a"}})
	if counts["a"] != 2 || counts["b"] != 1 {
		t.Errorf("按模型统计不正确: %v", counts)
	}
}

func TestMetricsService_LoadStats(t *testing.T) {
	st := &countingStorage{loaded: &core.RequestStats{
		TotalRequests:      7,
		SuccessfulRequests: 5,
		FailedRequests:     2,
		RequestHistory:     []core.RequestRecord{{Model: "a"}, {Model: "b"}, {Model: "c"}},
	}}
	ms := newTestMetrics(t, 2, st)

	if err := ms.LoadStats(); err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	stats := ms.GetRequestStats()
	if stats.TotalRequests != 7 || stats.FailedRequests != 2 {
		t.Errorf("加载的统计不正确: %+v", stats)
	}
	if len(stats.RequestHistory) != 2 || stats.RequestHistory[0].Model != "b" {
		t.Errorf("加载的历史应按容量截断: %+v", stats.RequestHistory)
	}

	failing := newTestMetrics(t, 2, &countingStorage{loadErr: errors.New("boom")})
	if err := failing.LoadStats(); err == nil {
		t.Error("存储出错时应返回错误")
	}
}

func TestMetricsService_Close_Idempotent(t *testing.T) {
	st := &countingStorage{}
	ms := NewMetricsService(MetricsConfig{
		SaveInterval: time.Second,
		HistorySize:  10,
		Storage:      st,
		Logger:       &core.NopLogger{},
	})

	ms.RecordRequest(true, 10*time.Millisecond, core.ModelFlashChat, core.ProcessingModeIndividual)

	if err := ms.Close(); err != nil {
		t.Fatalf("第一次关闭不应失败: %v", err)
	}
	firstCloseSaves := st.getSaveCount()
	if firstCloseSaves == 0 {
		t.Fatal("第一次关闭后应至少有一次持久化")
	}

	if err := ms.Close(); err != nil {
		t.Fatalf("第二次关闭不应失败: %v", err)
	}

	if st.getSaveCount() != firstCloseSaves {
		t.Fatalf("第二次 Close 不应新增持久化，第一次=%d，第二次后=%d", firstCloseSaves, st.getSaveCount())
	}
}
