package repository

import "fmt"

// APIError is returned for any non-2xx marketplace response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// ArtifactMissingError means the local file for an architecture does not
// exist. It is returned before any upload is started.
type ArtifactMissingError struct {
	Arch string
	Path string
}

func (e ArtifactMissingError) Error() string {
	return fmt.Sprintf("artifact not found for %s: %s", e.Arch, e.Path)
}

// UploadTransportError is a network level failure of a PUT. Only the host is
// kept; signed URLs carry credentials in their query string.
type UploadTransportError struct {
	Arch string
	Host string
	Err  error
}

func (e UploadTransportError) Error() string {
	return fmt.Sprintf("upload request failed for %s (host: %s): %v", e.Arch, e.Host, e.Err)
}

func (e UploadTransportError) Unwrap() error {
	return e.Err
}

// UploadHTTPError is a non-2xx answer from the storage endpoint.
type UploadHTTPError struct {
	Arch       string
	StatusCode int
	Status     string
	Body       string
}

func (e UploadHTTPError) Error() string {
	return fmt.Sprintf("upload failed for %s: HTTP %s - %s", e.Arch, e.Status, e.Body)
}
