package main

import (
	"fmt"
	"strings"

	"github.com/fixkme/polltimer/framework/config"
	"github.com/redis/go-redis/v9"
)

const (
	RedisMode_Single   = "single"
	RedisMode_Sentinel = "sentinel"
	RedisMode_Cluster  = "cluster"
)

// newRedis 按配置模式创建客户端, 不做连通性检查, publish失败由动作返回
func newRedis(conf *config.RedisConfig) (redis.UniversalClient, error) {
	addrs := strings.Split(conf.RedisAddr, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}
	if len(addrs) == 0 || addrs[0] == "" {
		return nil, fmt.Errorf("redis addr invalid (%s)", conf.RedisAddr)
	}
	switch conf.RedisMode {
	case RedisMode_Cluster:
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: conf.RedisPassword,
		}), nil
	case RedisMode_Sentinel:
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    conf.RedisMasterName,
			SentinelAddrs: addrs,
			Password:      conf.RedisPassword,
			DB:            conf.RedisDB,
		}), nil
	case "", RedisMode_Single:
		return redis.NewClient(&redis.Options{
			Addr:     addrs[0],
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		}), nil
	}
	return nil, fmt.Errorf("redis mode invalid (%s)", conf.RedisMode)
}
