package cache

import (
	"fmt"
	"strings"

	"github.com/soltixdb/trendscope/internal/config"
	"github.com/soltixdb/trendscope/internal/utils"
)

// New creates a Cache based on configuration. Memory is the default.
func New(cfg config.CacheConfig) (Cache, error) {
	cacheType := utils.CacheType(strings.ToLower(cfg.Type))
	if cacheType == "" {
		cacheType = utils.CacheTypeMemory
	}

	switch cacheType {
	case utils.CacheTypeMemory:
		return NewMemoryCache(cfg.MaxEntries), nil

	case utils.CacheTypeRedis:
		return NewRedisCache(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			Prefix:   cfg.Prefix,
		})

	case utils.CacheTypeNone:
		return nopCache{}, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s (supported: memory, redis, none)", cacheType)
	}
}
