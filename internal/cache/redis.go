package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/myanmatch/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// --- like counters ---

// KeyForLikeCount generates Redis key for a user's incoming like count
func (c *RedisCache) KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

func (c *RedisCache) UpdateLikeCount(ctx context.Context, userID uint64, count int64) error {
	// Always refresh TTL when updating
	return c.Set(ctx, c.KeyForLikeCount(userID), count, time.Hour)
}

// --- OTP state ---

func keyForOTP(email string) string {
	return "otp:reset:" + email
}

func keyForOTPAttempts(email string) string {
	return "otp:reset:attempts:" + email
}

// StoreOTP saves a reset code for the email and clears the attempt counter.
func (c *RedisCache) StoreOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := c.Client.Set(ctx, keyForOTP(email), code, ttl).Err(); err != nil {
		return err
	}
	return c.Client.Del(ctx, keyForOTPAttempts(email)).Err()
}

// GetOTP returns the stored code, or "" on miss.
func (c *RedisCache) GetOTP(ctx context.Context, email string) (string, error) {
	val, err := c.Client.Get(ctx, keyForOTP(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// BurnOTP removes the code and attempt counter after a successful reset.
func (c *RedisCache) BurnOTP(ctx context.Context, email string) error {
	return c.Client.Del(ctx, keyForOTP(email), keyForOTPAttempts(email)).Err()
}

// IncrOTPAttempts bumps the failed-verification counter and returns the new
// value. The counter expires alongside the code.
func (c *RedisCache) IncrOTPAttempts(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	key := keyForOTPAttempts(email)
	n, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = c.Client.Expire(ctx, key, ttl).Err()
	return n, nil
}
