package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shelter-caller/config"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient 失败: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(&config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	if err == nil {
		t.Error("无法连接时应返回错误")
	}
}

func TestBlacklistToken(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	if err := c.BlacklistToken(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}

	ok, err := c.IsBlacklisted(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("期望 jti-1 在黑名单中，ok=%v err=%v", ok, err)
	}

	ok, _ = c.IsBlacklisted(ctx, "jti-2")
	if ok {
		t.Error("jti-2 不应在黑名单中")
	}

	mr.FastForward(2 * time.Minute)
	ok, _ = c.IsBlacklisted(ctx, "jti-1")
	if ok {
		t.Error("TTL 过后黑名单应失效")
	}
}

func TestBlacklistToken_ExpiredIsNoop(t *testing.T) {
	c, mr := setupTestRedis(t)

	if err := c.BlacklistToken(context.Background(), "jti-old", 0); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}
	if mr.Exists(blacklistPrefix + "jti-old") {
		t.Error("已过期 token 不应写入黑名单")
	}
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit 失败: %v", err)
		}
		if !ok {
			t.Fatalf("第 %d 次请求应放行", i+1)
		}
	}

	ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit 失败: %v", err)
	}
	if ok {
		t.Error("超过限额的请求应被拒绝")
	}

	ok, _ = c.CheckRateLimit(ctx, "rl:other", 3, time.Minute)
	if !ok {
		t.Error("不同 key 互不影响")
	}
}

func TestCheckRateLimit_Disabled(t *testing.T) {
	c := &Client{rdb: goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"}), logger: zap.NewNop()}
	defer c.Close()

	ok, err := c.CheckRateLimit(context.Background(), "rl:any", 0, time.Minute)
	if err != nil || !ok {
		t.Errorf("limit=0 时应直接放行，ok=%v err=%v", ok, err)
	}
}
