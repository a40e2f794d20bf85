package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// SourceQueryTimeout bounds a single read from an external series source
	SourceQueryTimeout = 20 * time.Second

	// CacheOperationTimeout bounds a single result cache get/set
	CacheOperationTimeout = 2 * time.Second

	// HealthCheckTimeout bounds a single readiness probe
	HealthCheckTimeout = 2 * time.Second

	// ShutdownTimeout is the graceful shutdown deadline for the HTTP server
	ShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Analysis Defaults
// =============================================================================

const (
	// DefaultTimestampColumn is the timestamp column of the reference data file
	DefaultTimestampColumn = "Timestamp"

	// DefaultValueColumn is the value column of the reference data file
	DefaultValueColumn = "Values"

	// DefaultThreshold selects the "low value" result set
	DefaultThreshold = "< 20"

	// MaxUploadSize limits CSV bodies accepted by the HTTP API (64 MB)
	MaxUploadSize = 64 * 1024 * 1024
)

// DefaultMovingAverageWindows are the trend windows computed when none are configured
var DefaultMovingAverageWindows = []int{1000, 5000, 5}

// =============================================================================
// Cache Constants
// =============================================================================

const (
	// DefaultCacheTTL is how long a cached analysis result stays valid
	DefaultCacheTTL = 10 * time.Minute

	// DefaultCacheMaxEntries bounds the in-memory result cache
	DefaultCacheMaxEntries = 128

	// DefaultCachePrefix namespaces redis keys
	DefaultCachePrefix = "trendscope"
)

// CacheType represents the result cache backend
type CacheType string

const (
	// CacheTypeMemory keeps results in process memory (default)
	CacheTypeMemory CacheType = "memory"

	// CacheTypeRedis stores results in Redis
	CacheTypeRedis CacheType = "redis"

	// CacheTypeNone disables result caching
	CacheTypeNone CacheType = "none"
)
