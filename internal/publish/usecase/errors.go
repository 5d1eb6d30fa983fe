package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoArchitectures     = errors.New("at least one architecture must be specified")
	ErrSubmissionIDMissing = errors.New("submission ID should not be empty")
)

// UploadURLMissingError means the service did not hand out a URL for a
// requested architecture.
type UploadURLMissingError struct {
	Arch string
}

func (e UploadURLMissingError) Error() string {
	return fmt.Sprintf("no upload URL returned for %s", e.Arch)
}

// TimeoutError is returned when no terminal status was seen in time.
type TimeoutError struct {
	Timeout time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for approval after %ds", int64(e.Timeout/time.Second))
}

// RejectedError marks a run whose submission was rejected by a moderator.
type RejectedError struct {
	SubmissionID string
}

func (e RejectedError) Error() string {
	return "submission was rejected"
}
