package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/smallbiznis/ledgerview/internal/config"
)

const (
	keyExportOrg       = "lv:export:org:%s"
	keyIntelligenceOrg = "lv:intelligence:org:%s"
)

// Exports are heavy, intelligence queries are chatty. Each gets its own
// bucket per organization.
const (
	exportRate  = 0.2 // tokens per second, ~12/minute
	exportBurst = 3

	intelligenceRate  = 2.0
	intelligenceBurst = 20
)

// APILimiter throttles the expensive read surfaces per organization.
// With no Redis configured every request is allowed.
type APILimiter struct {
	enabled bool
	bucket  *TokenBucket
	locker  *Locker
}

func NewAPILimiter(cfg config.Config) *APILimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &APILimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &APILimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
	}
}

func (l *APILimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Locker exposes the shared lock client for scheduler leader election.
func (l *APILimiter) Locker() *Locker {
	if l == nil {
		return nil
	}
	return l.locker
}

func (l *APILimiter) AllowExport(ctx context.Context, orgID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyExportOrg, strings.TrimSpace(orgID)), exportRate, exportBurst)
}

func (l *APILimiter) AllowIntelligence(ctx context.Context, orgID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyIntelligenceOrg, strings.TrimSpace(orgID)), intelligenceRate, intelligenceBurst)
}
