package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrAuthenticationCacheMiss = errors.New("authentication cache miss")
)

type AuthData struct {
	UserId string
	Role   string
}

type AuthenticateRequest struct {
	Token string
}

type AuthenticateResponse struct {
	Authenticated bool
	ErrorReason   string
	AuthData      *AuthData
}
