package core

import "time"

// HTTP client config constants
const (
	HTTPMaxIdleConns          = 100
	HTTPMaxIdleConnsPerHost   = 20
	HTTPMaxConnsPerHost       = 50
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 10 * time.Second
	HTTPResponseHeaderTimeout = 2 * time.Minute
	HTTPExpectContinueTimeout = 1 * time.Second
	HTTPRequestTimeout        = 5 * time.Minute
)

// Cache config constants
const (
	CacheDefaultCapacity = 1000
	CacheCleanupInterval = 5 * time.Minute
	ToolsParsingCacheTTL = 30 * time.Minute
	CacheKeyVersion      = "v1"
)

// Stats and monitoring constants
const (
	StatsFilePath        = "stats.json"
	MinSaveInterval      = 5 * time.Second
	HistoryBufferSize    = 1000
	HistoryBatchSize     = 100
	HistoryFlushInterval = 100 * time.Millisecond
)

// Response body size limits
const (
	MaxResponseBodySize = 10 * 1024 * 1024
	MaxErrorMessageSize = 4096
)

// Logging config constants
const (
	MaxDebugFilePathLength = 260
)

// File permission constants
const (
	FilePermissionReadWrite = 0644
)

// Time format constants
const (
	TimeFormatDateTime = "2006-01-02 15:04:05"
	TimeFormatISO      = "2006-01-02T15:04:05.000Z07:00"
)

// Tool validation constants
const (
	MaxToolNameLength = 64
	ToolNamePattern   = "^[a-zA-Z0-9_-]{1,64}$"
	SchemaTypeObject  = "object"
)

// Binary attachment constants
const (
	MaxBinarySizeBytes = 50 * 1024 * 1024
)
