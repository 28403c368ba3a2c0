package middleware

import (
	"context"
	"net/http"

	"interview-gate-service/entity"
	"interview-gate-service/httperrors"
	"interview-gate-service/repository"
	"interview-gate-service/request"

	"github.com/pkg/errors"
)

const (
	codeProfileNotFound = "ProfileNotFound"
)

type CandidateRepo interface {
	FindByUserId(ctx context.Context, userId string) (*entity.Candidate, error)
}

// ResolveCandidate loads the candidate profile owned by the authenticated
// user and attaches it to the request context.
func ResolveCandidate(candidates CandidateRepo) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			authData, err := ctx.GetAuthData()
			if err != nil {
				return errors.WithMessage(err, "resolve candidate: get auth data")
			}

			candidate, err := candidates.FindByUserId(ctx.Context(), authData.UserId)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return httperrors.New(
					http.StatusNotFound,
					"candidate profile not found",
					errors.Errorf("resolve candidate: no profile for user '%s'", authData.UserId),
				).WithCode(codeProfileNotFound)
			case err != nil:
				return errors.WithMessage(err, "resolve candidate: find by user id")
			}

			ctx.SetCandidate(*candidate)
			return next.Handle(ctx)
		})
	}
}
