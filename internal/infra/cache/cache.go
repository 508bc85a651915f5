package cache

import (
	"context"
	"time"
)

// 集計系クエリの短TTLキャッシュ。
// outはjsonでデコードできる構造体へのポインタ。
type StatsCache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Redisが無い構成向け
type NoopStatsCache struct{}

func (NoopStatsCache) Get(_ context.Context, _ string, _ any) (bool, error) {
	return false, nil
}

func (NoopStatsCache) Set(_ context.Context, _ string, _ any, _ time.Duration) error {
	return nil
}
