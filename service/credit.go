package service

import (
	"context"

	"interview-gate-service/domain"
	"interview-gate-service/metrics"
	"interview-gate-service/repository"

	"github.com/pkg/errors"
)

const (
	creditLimitReachedMessage = "interview limit reached, upgrade to get more interviews"
)

type CreditLedgerRepo interface {
	DecrementCredits(ctx context.Context, candidateId string) (int, error)
	CreditsById(ctx context.Context, candidateId string) (int, error)
}

// Credit is the consumable interview-credit ledger. Exhaustion is a normal
// terminal state, not an error. An unreachable ledger store fails closed:
// Consume and Peek return an error and the caller must refuse the request.
type Credit struct {
	repo    CreditLedgerRepo
	metrics *metrics.Gate
}

func NewCredit(repo CreditLedgerRepo, metrics *metrics.Gate) Credit {
	return Credit{
		repo:    repo,
		metrics: metrics,
	}
}

func (s Credit) Consume(ctx context.Context, candidateId string) (*domain.ConsumeResult, error) {
	creditsRemaining, err := s.repo.DecrementCredits(ctx, candidateId)
	switch {
	case errors.Is(err, repository.ErrNoCredits):
		s.metrics.CreditExhausted.Inc()
		return &domain.ConsumeResult{
			Success:          false,
			CreditsRemaining: 0,
			Message:          creditLimitReachedMessage,
		}, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, err
	case err != nil:
		s.metrics.LedgerFailClosed.Inc()
		return nil, errors.WithMessagef(domain.ErrLedgerUnavailable, "decrement credits: %v", err)
	}

	s.metrics.CreditConsumed.Inc()
	return &domain.ConsumeResult{
		Success:          true,
		CreditsRemaining: creditsRemaining,
	}, nil
}

func (s Credit) Peek(ctx context.Context, candidateId string) (int, error) {
	creditsRemaining, err := s.repo.CreditsById(ctx, candidateId)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return 0, err
	case err != nil:
		s.metrics.LedgerFailClosed.Inc()
		return 0, errors.WithMessagef(domain.ErrLedgerUnavailable, "credits by id: %v", err)
	}
	return creditsRemaining, nil
}
