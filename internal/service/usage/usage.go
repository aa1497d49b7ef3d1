// Package usage 限制每个创作者每天的 AI 调用次数
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/next-fans/internal/errs"
	"github.com/ashwinyue/next-fans/internal/repository"
)

// Quota 当日配额
type Quota struct {
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Limiter 每日调用计数器
type Limiter interface {
	// Consume 占用一次配额，用完时返回 *errs.RateLimitError
	Consume(ctx context.Context, creatorID string) (*Quota, error)
	// Current 查询当日配额
	Current(ctx context.Context, creatorID string) (*Quota, error)
}

// Day 计数所在的 UTC 日期
func Day(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// ResetAt 下一个 UTC 零点
func ResetAt(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

func newQuota(limit, used int, now time.Time) *Quota {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	if used > limit {
		used = limit
	}
	return &Quota{Limit: limit, Used: used, Remaining: remaining, ResetAt: ResetAt(now)}
}

func exhausted(q *Quota) error {
	return &errs.RateLimitError{Limit: q.Limit, Remaining: 0, ResetAt: q.ResetAt}
}

// DBLimiter 基于数据库条件 upsert 的计数器
type DBLimiter struct {
	repo  *repository.UsageRepository
	limit int
	now   func() time.Time
}

// NewDBLimiter 创建数据库计数器
func NewDBLimiter(repo *repository.UsageRepository, limit int) *DBLimiter {
	return &DBLimiter{repo: repo, limit: limit, now: time.Now}
}

// Consume 占用一次配额
func (l *DBLimiter) Consume(ctx context.Context, creatorID string) (*Quota, error) {
	now := l.now()
	calls, ok, err := l.repo.Increment(ctx, creatorID, Day(now), l.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to increment usage: %w", err)
	}
	q := newQuota(l.limit, calls, now)
	if !ok {
		return q, exhausted(q)
	}
	return q, nil
}

// Current 查询当日配额
func (l *DBLimiter) Current(ctx context.Context, creatorID string) (*Quota, error) {
	now := l.now()
	calls, err := l.repo.Get(ctx, creatorID, Day(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return newQuota(l.limit, calls, now), nil
}

// RedisLimiter 基于 Redis INCR 的计数器
// 超出上限的请求也会让计数增加，但不会被放行
type RedisLimiter struct {
	client *redis.Client
	limit  int
	now    func() time.Time
}

// NewRedisLimiter 创建 Redis 计数器
func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, now: time.Now}
}

// Key 计数器的 Redis key
func Key(creatorID string, now time.Time) string {
	return fmt.Sprintf("next-fans:ai_usage:%s:%s", creatorID, Day(now))
}

// Consume 占用一次配额
func (l *RedisLimiter) Consume(ctx context.Context, creatorID string) (*Quota, error) {
	now := l.now()
	key := Key(creatorID, now)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		// 多留一小时，避免跨时区读到刚过期的 key
		pipe.ExpireAt(ctx, key, ResetAt(now).Add(time.Hour))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment usage: %w", err)
	}

	used := int(incr.Val())
	q := newQuota(l.limit, used, now)
	if used > l.limit {
		return q, exhausted(q)
	}
	return q, nil
}

// Current 查询当日配额
func (l *RedisLimiter) Current(ctx context.Context, creatorID string) (*Quota, error) {
	now := l.now()
	used, err := l.client.Get(ctx, Key(creatorID, now)).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return newQuota(l.limit, used, now), nil
}
