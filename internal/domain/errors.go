package domain

import "errors"

var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrInvalidStatementPayload = errors.New("statement payload is missing required fields")
	ErrNoExtractionRecords     = errors.New("no extraction records loaded for session")
	ErrNoStatementPayload      = errors.New("statement payload not uploaded for session")
	ErrResultNotReady          = errors.New("reconciliation result not available yet")
	ErrRunNotFound             = errors.New("reconciliation run not found")
)
