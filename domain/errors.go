package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrEmptyContent      = errors.New("content must not be empty")
	ErrInvalidVisibility = errors.New("visibility must be public or private")
	ErrInvalidFeedMode   = errors.New("feed mode must be public or private")
)
