package middleware

import (
	"context"
	"net/http"

	"interview-gate-service/httperrors"
	"interview-gate-service/repository"
	"interview-gate-service/request"

	"github.com/pkg/errors"
)

const (
	codeCreditExhausted       = "CreditExhausted"
	codeDependencyUnavailable = "DependencyUnavailable"
)

type CreditPeeker interface {
	Peek(ctx context.Context, candidateId string) (int, error)
}

// RequireCredits fast-fails credit-gated endpoints on a zero balance. The
// authoritative spend happens later in the workflow, after ownership checks,
// so this peek never mutates the ledger. An unreachable ledger refuses the
// request: the ledger never fails open.
func RequireCredits(peeker CreditPeeker) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			candidate, err := ctx.Candidate()
			if err != nil {
				return errors.WithMessage(err, "require credits: candidate")
			}

			creditsRemaining, err := peeker.Peek(ctx.Context(), candidate.Id)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return httperrors.New(
					http.StatusNotFound,
					"candidate profile not found",
					errors.WithMessage(err, "require credits: peek"),
				).WithCode(codeProfileNotFound)
			case err != nil:
				return httperrors.New(
					http.StatusServiceUnavailable,
					"credit ledger is unavailable, try again later",
					errors.WithMessage(err, "require credits: peek"),
				).WithCode(codeDependencyUnavailable)
			}

			if creditsRemaining <= 0 {
				return CreditExhaustedError(errors.Errorf(
					"require credits: no credits left for candidate '%s'", candidate.Id,
				))
			}

			return next.Handle(ctx)
		})
	}
}

func CreditExhaustedError(internal error) httperrors.HttpError {
	return httperrors.New(
		http.StatusPaymentRequired,
		"interview limit reached, upgrade to get more interviews",
		internal,
	).
		WithCode(codeCreditExhausted).
		WithField("creditsRemaining", 0).
		WithField("upgradeRequired", true)
}
