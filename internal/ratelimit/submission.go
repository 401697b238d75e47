package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moimlab/moim/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keySubmitUser = "submit:user:%s"
	keyVerifyLock = "verify:lock:%s"
	verifyLockTTL = 30 * time.Second
)

// SubmissionLimiter throttles per-user submission creation and
// serializes verification attempts per submission.
type SubmissionLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewSubmissionLimiter(cfg config.Config) (*SubmissionLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.SubmitRate <= 0 || limitCfg.SubmitBurst <= 0 {
		return nil, errors.New("submission rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &SubmissionLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    limitCfg.SubmitRate,
		burst:   limitCfg.SubmitBurst,
	}, nil
}

func (l *SubmissionLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *SubmissionLimiter) AllowSubmit(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keySubmitUser, strings.TrimSpace(userID)), l.rate, l.burst)
}

// TryLockVerify guards against two concurrent verification runs for the
// same submission racing the external scorer.
func (l *SubmissionLimiter) TryLockVerify(ctx context.Context, submissionID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyVerifyLock, strings.TrimSpace(submissionID)), verifyLockTTL)
}

func (l *SubmissionLimiter) ReleaseVerify(ctx context.Context, submissionID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyVerifyLock, strings.TrimSpace(submissionID)), token)
}
