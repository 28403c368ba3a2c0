package repository

import (
	"context"

	"interview-gate-service/entity"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Application struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewApplication(pool *pgxpool.Pool) Application {
	return Application{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r Application) FindById(ctx context.Context, applicationId string) (*entity.InterviewApplication, error) {
	query, args, err := r.builder.
		Select(
			"id",
			"candidate_id",
			"is_interview_done",
			"coalesce(transcript, '')",
			"coalesce(evaluation_score, 0)",
			"coalesce(evaluation_summary, '')",
			"updated_at",
		).
		From("interview_applications").
		Where(squirrel.Eq{"id": applicationId}).
		ToSql()
	if err != nil {
		return nil, errors.WithMessage(err, "build select application sql")
	}

	app := entity.InterviewApplication{}
	row := r.pool.QueryRow(ctx, query, args...)
	err = row.Scan(
		&app.Id,
		&app.CandidateId,
		&app.IsInterviewDone,
		&app.Transcript,
		&app.EvaluationScore,
		&app.EvaluationSummary,
		&app.UpdatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, errors.WithMessage(err, "scan application")
	}

	return &app, nil
}

func (r Application) MarkInterviewDone(ctx context.Context, applicationId string) error {
	query, args, err := r.builder.
		Update("interview_applications").
		Set("is_interview_done", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": applicationId}).
		ToSql()
	if err != nil {
		return errors.WithMessage(err, "build update application sql")
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return errors.WithMessage(err, "mark interview done")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SaveResult overwrites the transcript and evaluation fields. Repeated saves
// for the same application are plain overwrites.
func (r Application) SaveResult(
	ctx context.Context,
	applicationId string,
	transcript string,
	evaluationScore int,
	evaluationSummary string,
) error {
	query, args, err := r.builder.
		Update("interview_applications").
		Set("transcript", transcript).
		Set("evaluation_score", evaluationScore).
		Set("evaluation_summary", evaluationSummary).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": applicationId}).
		ToSql()
	if err != nil {
		return errors.WithMessage(err, "build update application sql")
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return errors.WithMessage(err, "save interview result")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
