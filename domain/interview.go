package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrApplicationNotFound = errors.New("interview application not found")
	ErrOwnershipMismatch   = errors.New("application belongs to another candidate")
	ErrAlreadyCompleted    = errors.New("interview already completed")
	ErrCreditsExhausted    = errors.New("interview credits exhausted")
)

type StartRequest struct {
	ApplicationId string `json:"applicationId" validate:"required"`
}

type StartResponse struct {
	ApplicationId    string `json:"applicationId"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

type ConverseRequest struct {
	ApplicationId string `json:"applicationId" validate:"required"`
	Message       string `json:"message" validate:"required"`
}

type ConverseResponse struct {
	Reply string `json:"reply"`
}

type SaveRequest struct {
	ApplicationId     string `json:"applicationId" validate:"required"`
	Transcript        string `json:"transcript" validate:"required"`
	EvaluationScore   int    `json:"evaluationScore"`
	EvaluationSummary string `json:"evaluationSummary"`
}

type SaveResponse struct {
	Saved bool `json:"saved"`
}

type CompletionRequest struct {
	ApplicationId string `json:"applicationId"`
	Message       string `json:"message"`
}

type CompletionResponse struct {
	Reply string `json:"reply"`
}
