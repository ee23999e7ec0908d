// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package options

import (
	"github.com/go-redis/redis/v8"

	"github.com/p1nant0m/packet-eater/config"
)

// MakeNewRedisOptions maps the redis section of the configuration onto
// redis.Options.
func MakeNewRedisOptions(redisConfig config.RedisConfig) *redis.Options {
	return &redis.Options{
		PoolFIFO:        redisConfig.PoolFIFO,
		WriteTimeout:    redisConfig.WriteTimeout,
		ReadTimeout:     redisConfig.ReadTimeout,
		DialTimeout:     redisConfig.DialTimeout,
		MaxRetries:      redisConfig.MaxRetries,
		MinRetryBackoff: redisConfig.MinRetryBackoff,
		MaxRetryBackoff: redisConfig.MaxRetryBackoff,
		Username:        redisConfig.Username,
		Network:         redisConfig.Network,
		Addr:            redisConfig.Addr,
		Password:        redisConfig.Password,
		DB:              redisConfig.DB,
	}
}
