package handler

import (
	"context"
	"net/http"

	"interview-gate-service/domain"
	"interview-gate-service/entity"
	"interview-gate-service/httperrors"
	"interview-gate-service/middleware"
	"interview-gate-service/request"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	codeNotFound              = "NotFound"
	codeForbidden             = "Forbidden"
	codeAlreadyCompleted      = "AlreadyCompleted"
	codeDependencyUnavailable = "DependencyUnavailable"
)

type InterviewService interface {
	Start(ctx context.Context, candidate entity.Candidate, applicationId string) (*domain.StartResponse, error)
	Converse(ctx context.Context, candidate entity.Candidate, request domain.ConverseRequest) (*domain.ConverseResponse, error)
	Save(ctx context.Context, candidate entity.Candidate, request domain.SaveRequest) (*domain.SaveResponse, error)
}

type Interview struct {
	service InterviewService
}

func NewInterview(service InterviewService) Interview {
	return Interview{
		service: service,
	}
}

func (h Interview) Start(ctx *request.Context) error {
	candidate, err := ctx.Candidate()
	if err != nil {
		return errors.WithMessage(err, "start: candidate")
	}

	req := domain.StartRequest{}
	err = readJson(ctx, &req)
	if err != nil {
		return err
	}
	if req.ApplicationId == "" {
		return badRequest("applicationId is required")
	}

	resp, err := h.service.Start(ctx.Context(), candidate, req.ApplicationId)
	if err != nil {
		return mapWorkflowError(err, "start")
	}

	return writeJson(ctx, resp)
}

func (h Interview) Converse(ctx *request.Context) error {
	candidate, err := ctx.Candidate()
	if err != nil {
		return errors.WithMessage(err, "converse: candidate")
	}

	req := domain.ConverseRequest{}
	err = readJson(ctx, &req)
	if err != nil {
		return err
	}
	if req.ApplicationId == "" || req.Message == "" {
		return badRequest("applicationId and message are required")
	}

	resp, err := h.service.Converse(ctx.Context(), candidate, req)
	if err != nil {
		return mapWorkflowError(err, "converse")
	}

	return writeJson(ctx, resp)
}

func (h Interview) Save(ctx *request.Context) error {
	candidate, err := ctx.Candidate()
	if err != nil {
		return errors.WithMessage(err, "save: candidate")
	}

	req := domain.SaveRequest{}
	err = readJson(ctx, &req)
	if err != nil {
		return err
	}
	if req.ApplicationId == "" || req.Transcript == "" {
		return badRequest("applicationId and transcript are required")
	}

	resp, err := h.service.Save(ctx.Context(), candidate, req)
	if err != nil {
		return mapWorkflowError(err, "save")
	}

	return writeJson(ctx, resp)
}

func mapWorkflowError(err error, op string) error {
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound):
		return httperrors.New(
			http.StatusNotFound,
			"interview application not found",
			errors.WithMessage(err, op),
		).WithCode(codeNotFound)
	case errors.Is(err, domain.ErrOwnershipMismatch):
		return httperrors.New(
			http.StatusForbidden,
			"application belongs to another candidate",
			errors.WithMessage(err, op),
		).WithCode(codeForbidden)
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return httperrors.New(
			http.StatusConflict,
			"interview already completed",
			errors.WithMessage(err, op),
		).WithCode(codeAlreadyCompleted)
	case errors.Is(err, domain.ErrCreditsExhausted):
		return middleware.CreditExhaustedError(errors.WithMessage(err, op))
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return httperrors.New(
			http.StatusServiceUnavailable,
			"credit ledger is unavailable, try again later",
			errors.WithMessage(err, op),
		).WithCode(codeDependencyUnavailable)
	case isCollaboratorUnavailable(err):
		return httperrors.New(
			http.StatusServiceUnavailable,
			"interview assistant is unavailable, try again later",
			errors.WithMessage(err, op),
		).WithCode(codeDependencyUnavailable)
	default:
		return errors.WithMessage(err, op)
	}
}

func isCollaboratorUnavailable(err error) bool {
	code := status.Code(errors.Cause(err))
	return code == codes.Unavailable || code == codes.DeadlineExceeded
}

func badRequest(message string) error {
	return httperrors.New(
		http.StatusBadRequest,
		message,
		errors.New(message),
	)
}

func readJson(ctx *request.Context, value interface{}) error {
	err := json.NewDecoder(ctx.Request().Body).Decode(value)
	if err != nil {
		return httperrors.New(
			http.StatusBadRequest,
			"invalid json body",
			errors.WithMessage(err, "decode request body"),
		)
	}
	return nil
}

func writeJson(ctx *request.Context, value interface{}) error {
	writer := ctx.ResponseWriter()
	writer.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(writer).Encode(value)
	if err != nil {
		return errors.WithMessage(err, "encode response body")
	}
	return nil
}
