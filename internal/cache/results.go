package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
	"github.com/soltixdb/trendscope/internal/logging"
	"github.com/soltixdb/trendscope/internal/utils"
)

// ResultStore caches pipeline results on top of a Cache backend.
// Backend and decoding failures are logged and reported as misses so a
// broken cache never fails an analysis.
type ResultStore struct {
	backend  Cache
	ttl      time.Duration
	compress bool
	logger   *logging.Logger
}

// NewResultStore wraps backend. A nil backend disables caching.
func NewResultStore(backend Cache, ttl time.Duration, compress bool, logger *logging.Logger) *ResultStore {
	if backend == nil {
		backend = nopCache{}
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &ResultStore{
		backend:  backend,
		ttl:      ttl,
		compress: compress,
		logger:   logger,
	}
}

// Lookup returns the cached result for key, if any
func (s *ResultStore) Lookup(ctx context.Context, key string) (*pipeline.Result, bool) {
	ctx, cancel := context.WithTimeout(ctx, utils.CacheOperationTimeout)
	defer cancel()

	payload, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Result cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	data, err := decode(payload)
	if err != nil {
		s.logger.Warn("Result cache entry unreadable", "key", key, "error", err)
		return nil, false
	}

	var result pipeline.Result
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("Result cache entry undecodable", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

// Store saves result under key
func (s *ResultStore) Store(ctx context.Context, key string, result *pipeline.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("Result cache encode failed", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, utils.CacheOperationTimeout)
	defer cancel()

	if err := s.backend.Set(ctx, key, encode(data, s.compress), s.ttl); err != nil {
		s.logger.Warn("Result cache write failed", "key", key, "error", err)
	}
}

// Close closes the backend
func (s *ResultStore) Close() error {
	return s.backend.Close()
}
