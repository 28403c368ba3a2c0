package repository

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound  = errors.New("entity not found")
	ErrNoCredits = errors.New("no interview credits left")
)
