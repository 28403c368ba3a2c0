package repository

import (
	"context"

	"interview-gate-service/domain"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/grpc/client"
)

const (
	completeEndpoint = "interview-ai-service/completion/complete"
)

// Completion invokes the external text-completion module. The AI call itself
// is opaque to the gate, only its availability matters here.
type Completion struct {
	cli *client.Client
}

func NewCompletion(cli *client.Client) Completion {
	return Completion{
		cli: cli,
	}
}

func (r Completion) Complete(ctx context.Context, request domain.CompletionRequest) (*domain.CompletionResponse, error) {
	resp := domain.CompletionResponse{}
	err := r.cli.Invoke(completeEndpoint).
		JsonRequestBody(request).
		JsonResponseBody(&resp).
		Do(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "grpc client invoke: %s", completeEndpoint)
	}
	return &resp, nil
}
