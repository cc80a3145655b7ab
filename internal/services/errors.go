package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCatalogueUnavailable marks transient catalogue read failures.
	ErrCatalogueUnavailable = errors.New("catalogue unavailable")
	// ErrCatalogueWrite marks transient catalogue write failures.
	ErrCatalogueWrite = errors.New("catalogue write error")
	// ErrNotFound marks a missing carrier or segment set.
	ErrNotFound = errors.New("not found")
	// ErrTimingValidation marks segment timecode rule violations.
	ErrTimingValidation = errors.New("timing validation error")
	// ErrExtraction marks stream-copy tool failures.
	ErrExtraction = errors.New("extraction error")
	// ErrVerification marks lossless verification failures.
	ErrVerification = errors.New("lossless verification error")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExtraction
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether an error represents a transient collaborator
// failure that may be retried with backoff. Media and validation failures are
// never retryable.
func Retryable(err error) bool {
	return errors.Is(err, ErrCatalogueUnavailable) || errors.Is(err, ErrCatalogueWrite)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
