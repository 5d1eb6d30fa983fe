package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blankon/irgsh-publish/internal/logging"
	"github.com/blankon/irgsh-publish/internal/publish/entity"
)

const (
	defaultUploadTimeout = 10 * time.Minute
	maxErrorBodySize     = 64 << 10
)

// ArtifactUploader PUTs local artifacts to pre-signed storage URLs.
//
// All artifacts are resolved before the first request, so a missing file
// fails the run without any upload. Uploads then run concurrently; the first
// failure is the one returned, uploads not yet dispatched are skipped, and
// uploads already in flight are left to finish.
type ArtifactUploader struct {
	client      *http.Client
	maxParallel int
	logger      logging.Logger
}

// NewArtifactUploader returns an uploader. maxParallel <= 0 means one
// goroutine per architecture.
func NewArtifactUploader(httpClient *http.Client, maxParallel int) ArtifactUploader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultUploadTimeout}
	}
	return ArtifactUploader{
		client:      httpClient,
		maxParallel: maxParallel,
		logger:      logging.GetLogger("upload"),
	}
}

// ResolveArtifacts maps every architecture to {dir}/{pluginId}-{arch}.tar.gz
// and checks the file is there.
func ResolveArtifacts(artifactDir, pluginID string, architectures []string) ([]entity.Artifact, error) {
	artifacts := make([]entity.Artifact, 0, len(architectures))
	for _, arch := range architectures {
		path := filepath.Join(artifactDir, entity.ArtifactFileName(pluginID, arch))
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ArtifactMissingError{Arch: arch, Path: path}
			}
			return nil, fmt.Errorf("failed to stat artifact %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, ArtifactMissingError{Arch: arch, Path: path}
		}
		artifacts = append(artifacts, entity.Artifact{Arch: arch, Path: path, Size: info.Size()})
	}
	return artifacts, nil
}

func (u ArtifactUploader) UploadAll(ctx context.Context, artifactDir, pluginID string, urls entity.UploadURLs) error {
	artifacts, err := ResolveArtifacts(artifactDir, pluginID, urls.Architectures())
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if u.maxParallel > 0 {
		group.SetLimit(u.maxParallel)
	}
	for _, artifact := range artifacts {
		artifact := artifact
		uploadURL := urls[artifact.Arch]
		group.Go(func() error {
			// groupCtx is only used to skip work after a sibling failed;
			// the request itself runs on ctx so it is not torn down.
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return u.upload(ctx, artifact, uploadURL)
		})
	}
	return group.Wait()
}

func (u ArtifactUploader) upload(ctx context.Context, artifact entity.Artifact, uploadURL string) error {
	parsed, err := url.Parse(uploadURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid upload URL for %s", artifact.Arch)
	}
	host := parsed.Host

	body, err := os.ReadFile(artifact.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return ArtifactMissingError{Arch: artifact.Arch, Path: artifact.Path}
		}
		return fmt.Errorf("failed to read artifact %s: %w", artifact.Path, err)
	}

	u.logger.Infof("uploading %s (%.1f KB) for %s to %s...",
		filepath.Base(artifact.Path), float64(len(body))/1024, artifact.Arch, host)

	request, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid upload URL for %s", artifact.Arch)
	}
	request.Header.Set("Content-Type", "application/gzip")
	request.ContentLength = int64(len(body))

	response, err := u.client.Do(request)
	if err != nil {
		// *url.Error embeds the whole signed URL in its message.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return UploadTransportError{Arch: artifact.Arch, Host: host, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		text, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodySize))
		return UploadHTTPError{
			Arch:       artifact.Arch,
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Body:       string(text),
		}
	}

	u.logger.Infof("  uploaded %s successfully", artifact.Arch)
	return nil
}
