package client

import "errors"

var (
	ErrNotFound   = errors.New("client not found")
	ErrEmailTaken = errors.New("email already registered")
)
