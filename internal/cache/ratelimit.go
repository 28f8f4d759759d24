package cache

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	// rateLimitIPPrefix is the Redis key prefix for per-client buckets.
	rateLimitIPPrefix = "itemledger:ratelimit:ip:"
	// rateLimitTTL bounds how long an idle bucket survives.
	rateLimitTTL = 10 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes in one atomic step.
// Returns {allowed, retry_after_seconds, remaining_tokens}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = math.max(0, now - last_update)
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// AllowIP takes one token from the bucket for ip. rps is the refill rate and
// burst the bucket capacity. Errors are returned to the caller, which decides
// whether to fail open.
func (c *Cache) AllowIP(ctx context.Context, ip string, rps, burst int) (*RateLimitResult, error) {
	if rps <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %d", rps)
	}

	now := c.now()
	raw, err := tokenBucketScript.Run(ctx, c.client,
		[]string{rateLimitIPPrefix + hashIP(ip)},
		rps, burst, float64(now.UnixMilli())/1000, int(rateLimitTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("token bucket script: %w", err)
	}

	return bucketResult(raw, rps, now)
}

// bucketResult interprets the script reply.
func bucketResult(raw []int64, rps int, now time.Time) (*RateLimitResult, error) {
	if len(raw) != 3 {
		return nil, fmt.Errorf("unexpected token bucket reply length %d", len(raw))
	}

	res := &RateLimitResult{
		Allowed:    raw[0] == 1,
		Limit:      rps,
		Remaining:  raw[2],
		RetryAfter: time.Duration(raw[1]) * time.Second,
	}
	perToken := time.Duration(math.Ceil(float64(time.Second) / float64(rps)))
	res.ResetAt = now.Add(perToken)
	if !res.Allowed {
		res.ResetAt = now.Add(res.RetryAfter)
	}
	return res, nil
}

// hashIP returns a truncated BLAKE2b-256 digest so raw addresses never reach Redis.
func hashIP(ip string) string {
	sum := blake2b.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
