package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blankon/irgsh-publish/internal/logging"
	"github.com/blankon/irgsh-publish/internal/publish/entity"
)

const (
	OutputSubmissionID = "submission-id"
	OutputStatus       = "status"
)

type PublishRequest struct {
	PublisherSlug   string
	PluginID        string
	Version         string
	ArtifactPath    string
	Architectures   []string
	WaitForApproval bool
	PollTimeout     time.Duration
}

type PublishResult struct {
	SubmissionID string
	Status       entity.SubmissionStatus
}

// PublishUsecase runs create -> upload URLs -> upload -> submit -> wait.
type PublishUsecase struct {
	api      MarketplaceAPI
	uploader ArtifactUploader
	waiter   ApprovalWaiter
	outputs  OutputSink
	logger   logging.Logger
}

func NewPublishUsecase(
	api MarketplaceAPI,
	uploader ArtifactUploader,
	waiter ApprovalWaiter,
	outputs OutputSink,
	logger logging.Logger,
) *PublishUsecase {
	if logger == nil {
		logger = logging.GetLogger("usecase")
	}
	return &PublishUsecase{
		api:      api,
		uploader: uploader,
		waiter:   waiter,
		outputs:  outputs,
		logger:   logger,
	}
}

// NormalizeVersion strips a single leading "v".
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(version, "v")
}

// Publish runs the whole pipeline. A rejected submission returns the result
// together with a RejectedError; every other error aborts the run.
func (s *PublishUsecase) Publish(ctx context.Context, req PublishRequest) (result PublishResult, err error) {
	if len(req.Architectures) == 0 {
		return result, ErrNoArchitectures
	}
	version := NormalizeVersion(req.Version)

	s.logger.Infof("creating submission for %s@%s...", req.PluginID, version)
	submission, err := s.api.CreateSubmission(ctx, req.PublisherSlug, req.PluginID, version)
	if err != nil {
		return result, err
	}
	result.SubmissionID = submission.ID
	if err = s.setOutput(OutputSubmissionID, submission.ID); err != nil {
		return result, err
	}
	s.logger.Infof("  submission created: %s", submission.ID)

	s.logger.Infof("generating upload URLs for %s...", strings.Join(req.Architectures, ", "))
	urls, err := s.api.GenerateUploadURLs(ctx, submission.ID, req.Architectures)
	if err != nil {
		return result, err
	}
	requested := entity.UploadURLs{}
	for _, arch := range req.Architectures {
		uploadURL, ok := urls[arch]
		if !ok || uploadURL == "" {
			return result, UploadURLMissingError{Arch: arch}
		}
		requested[arch] = uploadURL
	}

	s.logger.Infof("uploading artifacts...")
	if err = s.uploader.UploadAll(ctx, req.ArtifactPath, req.PluginID, requested); err != nil {
		return result, err
	}

	s.logger.Infof("submitting for review...")
	reviewed, err := s.api.SubmitForReview(ctx, submission.ID)
	if err != nil {
		return result, err
	}
	s.logger.Infof("  submission status: %s", reviewed.Status)

	if !req.WaitForApproval {
		result.Status = reviewed.Status
		if err = s.setOutput(OutputStatus, string(result.Status)); err != nil {
			return result, err
		}
		s.logger.Infof("submission submitted for review. Use wait-for-approval to poll for result.")
		return result, nil
	}

	status, err := s.waiter.Wait(ctx, submission.ID, req.PollTimeout)
	if err != nil {
		return result, err
	}
	result.Status = status
	if err = s.setOutput(OutputStatus, string(status)); err != nil {
		return result, err
	}

	if status == entity.StatusRejected {
		return result, RejectedError{SubmissionID: submission.ID}
	}
	s.logger.Infof("submission %s", status)
	return result, nil
}

func (s *PublishUsecase) setOutput(name, value string) error {
	if s.outputs == nil {
		return nil
	}
	if err := s.outputs.SetOutput(name, value); err != nil {
		return fmt.Errorf("failed to set output %s: %w", name, err)
	}
	return nil
}
