package util

import "errors"

var (
	ErrAIMissingKey     = errors.New("AI API key is not configured")
	ErrGeneration       = errors.New("generation failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("record not found")
	ErrActionInFlight   = errors.New("action already in flight")
	ErrEmptyCode        = errors.New("submitted code is empty")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrEmailRegistered  = errors.New("email already registered")
)
