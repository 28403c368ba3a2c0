package repository

import (
	"context"

	"interview-gate-service/entity"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Candidate struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewCandidate(pool *pgxpool.Pool) Candidate {
	return Candidate{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r Candidate) FindByUserId(ctx context.Context, userId string) (*entity.Candidate, error) {
	query, args, err := r.builder.
		Select("id", "user_id", "interview_credits").
		From("candidates").
		Where(squirrel.Eq{"user_id": userId}).
		ToSql()
	if err != nil {
		return nil, errors.WithMessage(err, "build select candidate sql")
	}

	candidate := entity.Candidate{}
	row := r.pool.QueryRow(ctx, query, args...)
	err = row.Scan(&candidate.Id, &candidate.UserId, &candidate.InterviewCredits)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, errors.WithMessage(err, "scan candidate")
	}

	return &candidate, nil
}

// DecrementCredits spends one interview credit and returns the new balance.
// The decrement is conditional on a positive balance, so two concurrent calls
// can not both succeed on the last credit. Returns ErrNoCredits when the
// balance is already zero, ErrNotFound when the candidate does not exist.
func (r Candidate) DecrementCredits(ctx context.Context, candidateId string) (int, error) {
	query, args, err := r.builder.
		Update("candidates").
		Set("interview_credits", squirrel.Expr("interview_credits - 1")).
		Where(squirrel.Eq{"id": candidateId}).
		Where(squirrel.Gt{"interview_credits": 0}).
		Suffix("RETURNING interview_credits").
		ToSql()
	if err != nil {
		return 0, errors.WithMessage(err, "build update candidate sql")
	}

	creditsRemaining := 0
	row := r.pool.QueryRow(ctx, query, args...)
	err = row.Scan(&creditsRemaining)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err := r.CreditsById(ctx, candidateId)
		if err != nil {
			return 0, err
		}
		return 0, ErrNoCredits
	case err != nil:
		return 0, errors.WithMessage(err, "scan decremented credits")
	}

	return creditsRemaining, nil
}

func (r Candidate) CreditsById(ctx context.Context, candidateId string) (int, error) {
	query, args, err := r.builder.
		Select("interview_credits").
		From("candidates").
		Where(squirrel.Eq{"id": candidateId}).
		ToSql()
	if err != nil {
		return 0, errors.WithMessage(err, "build select credits sql")
	}

	credits := 0
	row := r.pool.QueryRow(ctx, query, args...)
	err = row.Scan(&credits)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return 0, ErrNotFound
	case err != nil:
		return 0, errors.WithMessage(err, "scan credits")
	}

	return credits, nil
}
