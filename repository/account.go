package repository

import (
	"context"

	"interview-gate-service/domain"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/grpc/client"
)

const (
	authenticateEndpoint = "account-service/auth/authenticate"
)

type Account struct {
	cli *client.Client
}

func NewAccount(cli *client.Client) Account {
	return Account{
		cli: cli,
	}
}

func (r Account) Authenticate(ctx context.Context, token string) (*domain.AuthenticateResponse, error) {
	resp := domain.AuthenticateResponse{}
	err := r.cli.Invoke(authenticateEndpoint).
		JsonRequestBody(domain.AuthenticateRequest{Token: token}).
		JsonResponseBody(&resp).
		Do(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "grpc client invoke: %s", authenticateEndpoint)
	}
	return &resp, nil
}
