package middleware

import (
	"context"
	"net/http"
	"strings"

	"interview-gate-service/domain"
	"interview-gate-service/httperrors"
	"interview-gate-service/request"

	"github.com/pkg/errors"
)

const (
	authTokenHeader = "x-auth-token"

	codeUnauthenticated = "Unauthenticated"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.AuthenticateResponse, error)
}

func Authenticate(authenticator Authenticator) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			token := strings.TrimSpace(ctx.Param(authTokenHeader))
			if token == "" {
				return httperrors.New(
					http.StatusUnauthorized,
					"auth token required",
					errors.New("authenticate: auth token required"),
				).WithCode(codeUnauthenticated)
			}

			resp, err := authenticator.Authenticate(ctx.Context(), token)
			if err != nil {
				return errors.WithMessage(err, "authenticate: authenticate")
			}
			if !resp.Authenticated {
				return httperrors.New(
					http.StatusUnauthorized,
					"invalid auth token",
					errors.WithMessage(errors.New(resp.ErrorReason), "authenticate: authenticate"),
				).WithCode(codeUnauthenticated)
			}
			ctx.Authenticate(*resp.AuthData)

			return next.Handle(ctx)
		})
	}
}
