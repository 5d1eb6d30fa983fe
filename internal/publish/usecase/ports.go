package usecase

import (
	"context"
	"time"

	"github.com/blankon/irgsh-publish/internal/publish/entity"
)

type StatusFetcher interface {
	GetSubmission(ctx context.Context, submissionID string) (entity.Submission, error)
}

type MarketplaceAPI interface {
	StatusFetcher
	CreateSubmission(ctx context.Context, publisherSlug, pluginID, version string) (entity.Submission, error)
	GenerateUploadURLs(ctx context.Context, submissionID string, architectures []string) (entity.UploadURLs, error)
	SubmitForReview(ctx context.Context, submissionID string) (entity.Submission, error)
}

type ArtifactUploader interface {
	UploadAll(ctx context.Context, artifactDir, pluginID string, urls entity.UploadURLs) error
}

// ApprovalWaiter blocks until a submission reaches a terminal status.
type ApprovalWaiter interface {
	Wait(ctx context.Context, submissionID string, timeout time.Duration) (entity.SubmissionStatus, error)
}

// OutputSink receives the run outputs (submission-id, status).
type OutputSink interface {
	SetOutput(name, value string) error
}

// Clock is the part of github.com/juju/clock.Clock the poller needs.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
