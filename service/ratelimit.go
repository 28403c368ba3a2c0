package service

import (
	"context"
	"fmt"
	"time"

	"interview-gate-service/conf"
	"interview-gate-service/domain"
	"interview-gate-service/metrics"
	"interview-gate-service/routes"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
)

const (
	defaultWindowInSec = 60
)

// Built-in class limits, used when the remote config leaves a class empty.
var defaultClassLimits = map[routes.Class]conf.ClassLimit{ //nolint:gochecknoglobals
	routes.ClassStrict: {Limit: 5, WindowInSec: defaultWindowInSec},
	routes.ClassMedium: {Limit: 30, WindowInSec: defaultWindowInSec},
	routes.ClassLight:  {Limit: 100, WindowInSec: defaultWindowInSec},
}

type RateLimitRepo interface {
	Check(ctx context.Context, identifier string, limit int, window time.Duration) (*domain.RateLimitResult, error)
}

type RateLimit struct {
	repo    RateLimitRepo
	table   *routes.Table
	limits  map[routes.Class]conf.ClassLimit
	metrics *metrics.Gate
	logger  log.Logger
}

func NewRateLimit(
	repo RateLimitRepo,
	table *routes.Table,
	config conf.RateLimit,
	metrics *metrics.Gate,
	logger log.Logger,
) RateLimit {
	limits := map[routes.Class]conf.ClassLimit{
		routes.ClassStrict: config.Strict,
		routes.ClassMedium: config.Medium,
		routes.ClassLight:  config.Light,
	}
	for class, limit := range limits {
		if limit.Limit <= 0 || limit.WindowInSec <= 0 {
			limits[class] = defaultClassLimits[class]
		}
	}
	return RateLimit{
		repo:    repo,
		table:   table,
		limits:  limits,
		metrics: metrics,
		logger:  logger,
	}
}

// Allow checks one more hit for the caller against the endpoint's class
// window. An unreachable counter store fails open: enforcement is degraded
// rather than blocking all traffic.
func (s RateLimit) Allow(ctx context.Context, endpoint string, actor string) (*domain.RateLimitResult, routes.Class, error) {
	class := s.table.ClassOf(endpoint)
	limit := s.limits[class]
	window := time.Duration(limit.WindowInSec) * time.Second
	identifier := fmt.Sprintf("%s:%s", class, actor)

	result, err := s.repo.Check(ctx, identifier, limit.Limit, window)
	if err != nil {
		s.metrics.LimiterFailOpen.Inc()
		s.logger.Error(ctx, errors.WithMessage(err, "rate limiter store is unavailable, failing open"))
		return &domain.RateLimitResult{
			Allowed:           true,
			Limit:             limit.Limit,
			Remaining:         limit.Limit - 1,
			ResetEpochSeconds: time.Now().Add(window).Unix(),
		}, class, nil
	}

	if !result.Allowed {
		s.metrics.RateLimited.WithLabelValues(string(class)).Inc()
	}

	return result, class, nil
}
