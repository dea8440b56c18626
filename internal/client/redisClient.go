package client

import (
	redisclient "github.com/redis/go-redis/v9"

	"coursepay/internal/config"
)

func NewRedisClient(cfg *config.Redis) *redisclient.Client {
	return redisclient.NewClient(&redisclient.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
