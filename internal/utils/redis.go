package utils

import (
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"county-map/internal/logger"
)

// OpenRedisFromEnv：从环境变量打开 Redis 客户端，支持 REDIS_DB 选择
// 约束：REDIS_ENABLED=false 时返回 nil，调用方据此关闭 GeoJSON 缓存；REDIS_DB 解析失败回退到 0
func OpenRedisFromEnv() *redis.Client {
	if v := os.Getenv("REDIS_ENABLED"); v == "false" || v == "0" {
		return nil
	}
	addr := getenv("REDIS_HOST", "127.0.0.1") + ":" + getenv("REDIS_PORT", "6379")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, _ := strconv.Atoi(v); n >= 0 {
			db = n
		}
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
