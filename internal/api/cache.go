package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"county-map/internal/logger"
	"county-map/internal/metrics"
)

const geojsonTTL = 24 * time.Hour

// 文档注释：静态 GeoJSON 的 Redis 缓存
// 背景：区域叠加层与城市标记只取决于目录，多实例共享一份序列化结果；键带目录指纹，目录变化后旧键自然过期。
// 约束：Redis 不可用时直接现算，不影响响应；含选择样式的县图层不走缓存。
type geoCache struct {
	rc     *redis.Client
	prefix string
}

func (c geoCache) get(ctx context.Context, name string, build func() ([]byte, error)) ([]byte, error) {
	if c.rc == nil {
		return build()
	}
	key := c.prefix + name
	if b, err := c.rc.Get(ctx, key).Bytes(); err == nil {
		metrics.GeoJSONCacheHitsTotal.Inc()
		return b, nil
	} else if err != redis.Nil {
		logger.L().Debug("geojson_cache_get_error", "key", key, "err", err)
	}
	metrics.GeoJSONCacheMissesTotal.Inc()
	b, err := build()
	if err != nil {
		return nil, err
	}
	if err := c.rc.Set(ctx, key, b, geojsonTTL).Err(); err != nil {
		logger.L().Debug("geojson_cache_set_error", "key", key, "err", err)
	}
	return b, nil
}
