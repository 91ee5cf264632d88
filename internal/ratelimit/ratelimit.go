// Package ratelimit provides a Redis-backed token bucket used to slow
// down credential guessing on the sign-in and sign-up endpoints.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// loginKeyPrefix is the Redis key prefix for per-IP login limits.
	loginKeyPrefix = "ratelimit:login:"
	// loginKeyTTL bounds how long idle buckets linger in Redis.
	loginKeyTTL = 120 * time.Second
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucketScript implements the token bucket algorithm atomically:
// refill based on elapsed time, then consume one token if available.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// Limiter checks per-IP rate limits against Redis.
type Limiter struct {
	client *redis.Client
	rpm    int
	burst  int
}

// New returns a Limiter allowing rpm requests per minute with the
// given burst per client IP.
func New(client *redis.Client, rpm, burst int) *Limiter {
	return &Limiter{client: client, rpm: rpm, burst: burst}
}

// CheckLogin checks and updates the login rate limit for a client IP.
// The IP is hashed before being used as a key so raw addresses are not
// stored in Redis.
func (l *Limiter) CheckLogin(ctx context.Context, ip string) (*Result, error) {
	key := loginKeyPrefix + hashIP(ip)
	ratePerSecond := float64(l.rpm) / 60.0

	now := time.Now().Unix()
	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{key},
		ratePerSecond,
		l.burst,
		now,
		int(loginKeyTTL.Seconds()),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 3 {
		return nil, fmt.Errorf("unexpected rate limit script result: %v", res)
	}

	allowed, _ := values[0].(int64)
	retryAfter, _ := values[1].(int64)
	remaining, _ := values[2].(int64)

	return &Result{
		Allowed:    allowed == 1,
		Remaining:  remaining,
		RetryAfter: time.Duration(retryAfter) * time.Second,
	}, nil
}

// hashIP returns a short stable digest of the client IP.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:16])
}
