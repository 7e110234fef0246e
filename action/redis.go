package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 500 * time.Millisecond

// Publish 内置动作: 把参数拼接后发布到redis频道
func Publish(rdb redis.Cmdable, channel string) Func {
	return func(args ...any) error {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, fmt.Sprint(arg))
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := rdb.Publish(ctx, channel, strings.Join(parts, " ")).Err(); err != nil {
			return fmt.Errorf("publish %s: %w", channel, err)
		}
		return nil
	}
}
