package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blankon/irgsh-publish/internal/logging"
	"github.com/blankon/irgsh-publish/internal/publish/entity"
)

const (
	DefaultBaseURL   = "https://marketplace.blankonlinux.or.id/api"
	defaultUserAgent = "irgsh-publish"
	defaultTimeout   = 60 * time.Second
)

// MarketplaceConfig is the read-only connection setting shared by every call.
type MarketplaceConfig struct {
	BaseURL   string
	APIKey    string
	UserAgent string
}

// MarketplaceClient talks to the marketplace submission API. It holds no
// mutable state and is safe for concurrent use.
type MarketplaceClient struct {
	config MarketplaceConfig
	client *http.Client
	logger logging.Logger
}

// NewMarketplaceClient returns a client for the given config. A nil
// httpClient gets a client with a 60 second timeout.
func NewMarketplaceClient(config MarketplaceConfig, httpClient *http.Client) MarketplaceClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return MarketplaceClient{
		config: config,
		client: httpClient,
		logger: logging.GetLogger("marketplace"),
	}
}

// BaseURL returns the normalized service endpoint.
func (c MarketplaceClient) BaseURL() string {
	return c.config.BaseURL
}

func (c MarketplaceClient) CreateSubmission(ctx context.Context, publisherSlug, pluginID, version string) (entity.Submission, error) {
	var submission entity.Submission
	path := "/v1/publishers/" + url.PathEscape(publisherSlug) + "/submissions"
	err := c.request(ctx, http.MethodPost, path, entity.CreateSubmissionRequest{
		PluginID: pluginID,
		Version:  version,
	}, &submission)
	return submission, err
}

// GenerateUploadURLs asks for one signed URL per architecture. The returned
// map is not checked against the request; callers handle missing keys.
func (c MarketplaceClient) GenerateUploadURLs(ctx context.Context, submissionID string, architectures []string) (entity.UploadURLs, error) {
	var response entity.UploadURLsResponse
	path := "/v1/submissions/" + url.PathEscape(submissionID) + "/upload-urls"
	err := c.request(ctx, http.MethodPost, path, entity.UploadURLsRequest{
		Architectures: architectures,
	}, &response)
	return response.URLs, err
}

func (c MarketplaceClient) SubmitForReview(ctx context.Context, submissionID string) (entity.Submission, error) {
	var submission entity.Submission
	path := "/v1/submissions/" + url.PathEscape(submissionID) + "/submit"
	err := c.request(ctx, http.MethodPost, path, nil, &submission)
	return submission, err
}

func (c MarketplaceClient) GetSubmission(ctx context.Context, submissionID string) (entity.Submission, error) {
	var submission entity.Submission
	path := "/v1/submissions/" + url.PathEscape(submissionID)
	err := c.request(ctx, http.MethodGet, path, nil, &submission)
	return submission, err
}

func (c MarketplaceClient) request(ctx context.Context, method, path string, body interface{}, target interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	requestID := uuid.New().String()
	request.Header.Set("X-API-Key", c.config.APIKey)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", c.config.UserAgent)
	request.Header.Set("X-Request-Id", requestID)

	c.logger.Debugf("[request] %s %s (request id %s)", method, path, requestID)

	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(response.StatusCode, raw)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(unwrapEnvelope(raw), target); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

// unwrapEnvelope returns body.data when the body is an object with a "data"
// key and the body itself otherwise. An empty body reads as an empty object.
func unwrapEnvelope(raw []byte) []byte {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("{}")
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok {
		return data
	}
	return raw
}

func newAPIError(statusCode int, raw []byte) APIError {
	// A body that is not JSON is treated as an empty object so the status
	// code always survives.
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)

	message := body.Error
	if message == "" {
		message = body.Message
	}
	if message == "" {
		message = fmt.Sprintf("Request failed (%d)", statusCode)
	}
	return APIError{StatusCode: statusCode, Message: message}
}
