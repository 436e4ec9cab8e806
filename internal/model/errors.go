package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")

	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrMutation        = errors.New("mutation failed")
	ErrMalformedRecord = errors.New("malformed record")
)

func NewError(model string, err error) error {
	return fmt.Errorf("%s: %w", strings.ToLower(model), err)
}
