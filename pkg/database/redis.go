package database

import (
	"context"
	"fmt"
	"time"

	"secaware_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis 连接Redis。失败时调用方降级运行（排行榜回落数据库），
// 所以这里只做一次带超时的连通性检查，不重试。
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	return rdb, nil
}
