package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"support-bot-go/pkg/log"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端并验证连通性。
// Redis 只承担历史记录的读缓存，但启动时仍要求可达。
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := RDB.Ping(context.Background()).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
}
