package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、接口限流与排行榜缓存
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：窗口内请求数未超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(limit), nil
}

// ── 排行榜缓存 ──
// 每次失效递增代数；计算前读取代数，写回时代数已变化则放弃写入，
// 避免失效之前开始的计算把旧结果写回缓存。

const (
	leaderboardPrefix    = "leaderboard:spirit:"
	leaderboardGenPrefix = "leaderboard:spirit:gen:"
)

// KEYS[1] 数据 KEYS[2] 代数；ARGV[1] 内容 ARGV[2] 期望代数 ARGV[3] TTL 毫秒
var setLeaderboardIfGeneration = goredis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[2] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// GetLeaderboard 读取赛事排行榜缓存；未命中时返回 (nil, false, nil)
func (c *Client) GetLeaderboard(ctx context.Context, tournamentID string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, leaderboardPrefix+tournamentID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// LeaderboardGeneration 当前缓存代数，从未失效过时为 0
func (c *Client) LeaderboardGeneration(ctx context.Context, tournamentID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, leaderboardGenPrefix+tournamentID).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetLeaderboard 代数仍为 generation 时写入缓存，返回是否写入
func (c *Client) SetLeaderboard(ctx context.Context, tournamentID string, payload []byte, ttl time.Duration, generation int64) (bool, error) {
	n, err := setLeaderboardIfGeneration.Run(ctx, c.rdb,
		[]string{leaderboardPrefix + tournamentID, leaderboardGenPrefix + tournamentID},
		payload, strconv.FormatInt(generation, 10), ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InvalidateLeaderboard 比分或精神分写入后递增代数并清除缓存
func (c *Client) InvalidateLeaderboard(ctx context.Context, tournamentID string) error {
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, leaderboardGenPrefix+tournamentID)
	pipe.Del(ctx, leaderboardPrefix+tournamentID)
	_, err := pipe.Exec(ctx)
	return err
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
