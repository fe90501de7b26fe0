package domain

import (
	"errors"
	"fmt"
)

var (
	ErrClaimNotFound    = errors.New("claim not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")

	// Pipeline step failures. Each wraps the underlying engine or storage
	// error; a failed step commits nothing.
	ErrExtraction       = errors.New("extraction failed")
	ErrAnonymization    = errors.New("anonymization failed")
	ErrCleaning         = errors.New("cleaning failed")
	ErrReportGeneration = errors.New("report generation failed")

	// LLM gateway signals surfaced with distinct messages; neither is
	// retried automatically.
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrPaymentRequired = errors.New("payment required")

	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
