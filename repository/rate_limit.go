package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"interview-gate-service/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	cli redis.UniversalClient
}

func NewRateLimit(cli redis.UniversalClient) RateLimit {
	return RateLimit{
		cli: cli,
	}
}

// Check prunes expired hits, counts the remainder, records the current hit and
// refreshes the key expiry in a single transactional pipeline. The allow
// decision is based on the count before the current hit is inserted.
func (r RateLimit) Check(
	ctx context.Context,
	identifier string,
	limit int,
	window time.Duration,
) (*domain.RateLimitResult, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - window.Milliseconds()
	key := r.key(identifier)
	member := fmt.Sprintf("%d:%s", nowMs, uuid.NewString())

	var countCmd *redis.IntCmd
	_, err := r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(windowStart, 10))
		countCmd = pipe.ZCard(ctx, key)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
		pipe.Expire(ctx, key, window+time.Second)
		return nil
	})
	if err != nil {
		return nil, errors.WithMessage(err, "redis tx pipelined")
	}

	countBeforeInsert := int(countCmd.Val())
	remaining := limit - countBeforeInsert - 1
	if remaining < 0 {
		remaining = 0
	}
	resetEpochSeconds := (nowMs + window.Milliseconds() + 999) / 1000 //nolint:mnd

	return &domain.RateLimitResult{
		Allowed:           countBeforeInsert < limit,
		Limit:             limit,
		Remaining:         remaining,
		ResetEpochSeconds: resetEpochSeconds,
	}, nil
}

func (r RateLimit) key(identifier string) string {
	return fmt.Sprintf("rate_limit:%s", identifier)
}
