package handler

import (
	"context"
	"net/http"

	"interview-gate-service/domain"
	"interview-gate-service/httperrors"
	"interview-gate-service/repository"
	"interview-gate-service/request"

	"github.com/pkg/errors"
)

type CreditPeeker interface {
	Peek(ctx context.Context, candidateId string) (int, error)
}

type Candidate struct {
	ledger CreditPeeker
}

func NewCandidate(ledger CreditPeeker) Candidate {
	return Candidate{
		ledger: ledger,
	}
}

// Credits reports the remaining balance without spending anything.
func (h Candidate) Credits(ctx *request.Context) error {
	candidate, err := ctx.Candidate()
	if err != nil {
		return errors.WithMessage(err, "credits: candidate")
	}

	creditsRemaining, err := h.ledger.Peek(ctx.Context(), candidate.Id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return httperrors.New(
			http.StatusNotFound,
			"candidate profile not found",
			errors.WithMessage(err, "credits: peek"),
		).WithCode(codeNotFound)
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return httperrors.New(
			http.StatusServiceUnavailable,
			"credit ledger is unavailable, try again later",
			errors.WithMessage(err, "credits: peek"),
		).WithCode(codeDependencyUnavailable)
	case err != nil:
		return errors.WithMessage(err, "credits: peek")
	}

	return writeJson(ctx, domain.CreditsResponse{CreditsRemaining: creditsRemaining})
}
