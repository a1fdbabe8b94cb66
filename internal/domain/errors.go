package domain

import "errors"

var (
	ErrMessageNotFound   = errors.New("scheduled message not found")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrInvalidMessage    = errors.New("invalid scheduled message")
	ErrNoProvider        = errors.New("no SMS provider configured")
)
