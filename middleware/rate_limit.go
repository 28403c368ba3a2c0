package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"interview-gate-service/domain"
	"interview-gate-service/httperrors"
	"interview-gate-service/request"
	"interview-gate-service/routes"

	"github.com/pkg/errors"
)

const (
	realIpHeader = "x-real-ip"

	limitHeader     = "limit"
	remainingHeader = "remaining"
	resetHeader     = "reset-epoch-seconds"

	codeRateLimited = "RateLimited"
)

type RateLimiter interface {
	Allow(ctx context.Context, endpoint string, actor string) (*domain.RateLimitResult, routes.Class, error)
}

func RateLimit(limiter RateLimiter) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			result, class, err := limiter.Allow(ctx.Context(), ctx.Endpoint(), actorKey(ctx))
			if err != nil {
				return errors.WithMessage(err, "rate limit: allow")
			}

			if !result.Allowed {
				return httperrors.New(
					http.StatusTooManyRequests,
					"rate limit has been reached, try after reset",
					errors.Errorf("rate limit: limit of class '%s' has been reached", class),
				).
					WithCode(codeRateLimited).
					WithHeader(limitHeader, strconv.Itoa(result.Limit)).
					WithHeader(remainingHeader, strconv.Itoa(result.Remaining)).
					WithHeader(resetHeader, strconv.FormatInt(result.ResetEpochSeconds, 10))
			}

			headers := ctx.ResponseWriter().Header()
			headers.Set(limitHeader, strconv.Itoa(result.Limit))
			headers.Set(remainingHeader, strconv.Itoa(result.Remaining))
			headers.Set(resetHeader, strconv.FormatInt(result.ResetEpochSeconds, 10))

			return next.Handle(ctx)
		})
	}
}

// actorKey prefers the authenticated user id, unauthenticated callers are
// keyed by their network address.
func actorKey(ctx *request.Context) string {
	authData, err := ctx.GetAuthData()
	if err == nil && authData.UserId != "" {
		return authData.UserId
	}

	realIp := strings.TrimSpace(ctx.Request().Header.Get(realIpHeader))
	if realIp != "" {
		return realIp
	}

	host, _, err := net.SplitHostPort(ctx.Request().RemoteAddr)
	if err != nil {
		return ctx.Request().RemoteAddr
	}
	return host
}
