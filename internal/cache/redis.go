package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/eventbooking/config"
	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client      redis.UniversalClient
	bookingsTTL time.Duration
	greetingTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, bookingsTTL, greetingTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		bookingsTTL,
		greetingTTL,
	)
}

func NewRedisCacheWithClient(client redis.UniversalClient, bookingsTTL, greetingTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      client,
		bookingsTTL: bookingsTTL,
		greetingTTL: greetingTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetBookings returns nil without error on a cache miss.
func (c *RedisCache) GetBookings(ctx context.Context, mobno string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	ok, err := c.getJSON(ctx, bookingsKey(mobno), &bookings)
	if err != nil || !ok {
		return nil, err
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

func (c *RedisCache) SetBookings(ctx context.Context, mobno string, bookings []domain.Booking) error {
	return c.setJSON(ctx, bookingsKey(mobno), bookings, c.bookingsTTL)
}

func (c *RedisCache) InvalidateBookings(ctx context.Context, mobno string) error {
	return c.client.Del(ctx, bookingsKey(mobno)).Err()
}

func (c *RedisCache) GetGreeting(ctx context.Context, mobno string) (*domain.Greeting, error) {
	var greeting domain.Greeting
	ok, err := c.getJSON(ctx, greetingKey(mobno), &greeting)
	if err != nil || !ok {
		return nil, err
	}
	return &greeting, nil
}

func (c *RedisCache) SetGreeting(ctx context.Context, mobno string, greeting *domain.Greeting) error {
	return c.setJSON(ctx, greetingKey(mobno), greeting, c.greetingTTL)
}

// AcquireSubmissionLock marks a submission for mobno as in flight and owned by
// token. It reports false when another submission already holds the lock.
func (c *RedisCache) AcquireSubmissionLock(ctx context.Context, mobno int64, token string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submissionLockKey(mobno), token, ttl).Result()
}

// ReleaseSubmissionLock deletes the lock only while token still owns it.
func (c *RedisCache) ReleaseSubmissionLock(ctx context.Context, mobno int64, token string) error {
	return releaseLockScript.Run(ctx, c.client, []string{submissionLockKey(mobno)}, token).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func bookingsKey(mobno string) string {
	return "cache:bookings:" + mobno
}

func greetingKey(mobno string) string {
	return "cache:greeting:" + mobno
}

func submissionLockKey(mobno int64) string {
	return fmt.Sprintf("lock:submission:%d", mobno)
}
