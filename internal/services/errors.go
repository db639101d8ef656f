package services

import (
	"errors"
	"fmt"
	"strings"

	"storyreel/internal/queue"
)

// Failure markers attached by Wrap. Stages pick the marker that matches the
// root cause: ErrExternalTool for piper/ffmpeg/ffprobe invocations,
// ErrValidation for bad story input, ErrConfiguration for unusable settings
// or missing directories, ErrNotFound for absent files, ErrTransient for
// anything retryable.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap tags err with one of the markers above and prefixes stage/operation
// context, so a single errors.Is later decides where the queue item lands.
// A nil marker degrades to ErrTransient rather than losing the chain.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus decides where a failed item lands. Bad input, bad settings,
// and missing files will fail the same way on every retry, so those park in
// review for a human; everything else goes to failed and stays retryable.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
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
