package service

import (
	"context"

	"interview-gate-service/domain"
	"interview-gate-service/entity"
	"interview-gate-service/repository"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
)

type ApplicationRepo interface {
	FindById(ctx context.Context, applicationId string) (*entity.InterviewApplication, error)
	MarkInterviewDone(ctx context.Context, applicationId string) error
	SaveResult(ctx context.Context, applicationId string, transcript string, evaluationScore int, evaluationSummary string) error
}

type CreditLedger interface {
	Consume(ctx context.Context, candidateId string) (*domain.ConsumeResult, error)
}

type CompletionRepo interface {
	Complete(ctx context.Context, request domain.CompletionRequest) (*domain.CompletionResponse, error)
}

// Interview drives the session workflow: not started -> in progress
// (start, spends a credit) -> completed (save). Ownership is re-checked on
// every transition.
type Interview struct {
	applications ApplicationRepo
	ledger       CreditLedger
	completion   CompletionRepo
	logger       log.Logger
}

func NewInterview(
	applications ApplicationRepo,
	ledger CreditLedger,
	completion CompletionRepo,
	logger log.Logger,
) Interview {
	return Interview{
		applications: applications,
		ledger:       ledger,
		completion:   completion,
		logger:       logger,
	}
}

// Start consumes one credit and marks the interview slot as taken. All checks
// run before the ledger call, so a refused start never costs a credit. Once
// the decrement commits the spend is final, even if the flip fails afterwards.
func (s Interview) Start(
	ctx context.Context,
	candidate entity.Candidate,
	applicationId string,
) (*domain.StartResponse, error) {
	app, err := s.findOwned(ctx, candidate, applicationId)
	if err != nil {
		return nil, err
	}
	if app.IsInterviewDone {
		return nil, domain.ErrAlreadyCompleted
	}

	result, err := s.ledger.Consume(ctx, candidate.Id)
	if err != nil {
		return nil, errors.WithMessage(err, "consume credit")
	}
	if !result.Success {
		return nil, domain.ErrCreditsExhausted
	}

	err = s.applications.MarkInterviewDone(ctx, applicationId)
	if err != nil {
		s.logger.Error(
			ctx,
			errors.WithMessage(err, "credit is spent but interview slot is not marked, spend is final"),
			log.String("applicationId", applicationId),
		)
		return nil, errors.WithMessage(err, "mark interview done")
	}

	return &domain.StartResponse{
		ApplicationId:    applicationId,
		CreditsRemaining: result.CreditsRemaining,
	}, nil
}

// Converse is credit-free, the slot was paid for at start.
func (s Interview) Converse(
	ctx context.Context,
	candidate entity.Candidate,
	request domain.ConverseRequest,
) (*domain.ConverseResponse, error) {
	_, err := s.findOwned(ctx, candidate, request.ApplicationId)
	if err != nil {
		return nil, err
	}

	completion, err := s.completion.Complete(ctx, domain.CompletionRequest{
		ApplicationId: request.ApplicationId,
		Message:       request.Message,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "completion complete")
	}

	return &domain.ConverseResponse{Reply: completion.Reply}, nil
}

// Save persists the transcript and evaluation. Repeated saves overwrite, they
// never charge again.
func (s Interview) Save(
	ctx context.Context,
	candidate entity.Candidate,
	request domain.SaveRequest,
) (*domain.SaveResponse, error) {
	_, err := s.findOwned(ctx, candidate, request.ApplicationId)
	if err != nil {
		return nil, err
	}

	err = s.applications.SaveResult(
		ctx,
		request.ApplicationId,
		request.Transcript,
		request.EvaluationScore,
		request.EvaluationSummary,
	)
	if err != nil {
		return nil, errors.WithMessage(err, "save interview result")
	}

	return &domain.SaveResponse{Saved: true}, nil
}

func (s Interview) findOwned(
	ctx context.Context,
	candidate entity.Candidate,
	applicationId string,
) (*entity.InterviewApplication, error) {
	app, err := s.applications.FindById(ctx, applicationId)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, domain.ErrApplicationNotFound
	case err != nil:
		return nil, errors.WithMessage(err, "find application by id")
	}
	if app.CandidateId != candidate.Id {
		return nil, domain.ErrOwnershipMismatch
	}
	return app, nil
}
