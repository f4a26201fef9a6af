package core

import (
	"context"
	"time"
)

// Logger interface
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

// Cache interface
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, duration time.Duration)
	Stop()
}

// StorageInterface storage interface
type StorageInterface interface {
	SaveStats(stats *RequestStats) error
	LoadStats() (*RequestStats, error)
	Close() error
}

// UpstreamRequest is what the node hands to the transport capability.
type UpstreamRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// Transport performs the upstream call and returns the raw JSON body.
// Failures are reported as *TransportError.
type Transport interface {
	Do(ctx context.Context, req UpstreamRequest) ([]byte, error)
}

// MetricsCollector interface
type MetricsCollector interface {
	RecordRequest(success bool, duration time.Duration, model, mode string)
	RecordCacheHit()
	RecordCacheMiss()
	RecordToolParsing(duration time.Duration)
	RecordTokenUsage(usage Usage)
	GetQPS() float64
}

// NopLogger empty logger implementation
type NopLogger struct{}

func (*NopLogger) Debug(format string, args ...any) {}
func (*NopLogger) Info(format string, args ...any)  {}
func (*NopLogger) Warn(format string, args ...any)  {}
func (*NopLogger) Error(format string, args ...any) {}
func (*NopLogger) Fatal(format string, args ...any) {}

// NopMetrics empty metrics collector implementation
type NopMetrics struct{}

func (*NopMetrics) RecordRequest(success bool, duration time.Duration, model, mode string) {}
func (*NopMetrics) RecordCacheHit()                                                        {}
func (*NopMetrics) RecordCacheMiss()                                                       {}
func (*NopMetrics) RecordToolParsing(duration time.Duration)                               {}
func (*NopMetrics) RecordTokenUsage(usage Usage)                                           {}
func (*NopMetrics) GetQPS() float64                                                        { return 0 }
