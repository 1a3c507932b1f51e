package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/mentorlane/mentorlane/internal/config"
)

const keyCheckoutUser = "checkout:user:%s:%s"

// CheckoutLimiter throttles checkout session creation per user. Disabled
// when no redis address is configured.
type CheckoutLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewCheckoutLimiter(cfg config.Config) *CheckoutLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &CheckoutLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &CheckoutLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    0.2,
		burst:   5,
	}
}

// Allow reports whether the user may start another checkout session.
// A disabled limiter always allows.
func (l *CheckoutLimiter) Allow(ctx context.Context, userID, endpoint string) (*Result, error) {
	if l == nil || !l.enabled {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyCheckoutUser, strings.TrimSpace(userID), strings.TrimSpace(endpoint))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
