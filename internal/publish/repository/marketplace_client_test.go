package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blankon/irgsh-publish/internal/publish/entity"
	"github.com/blankon/irgsh-publish/pkg/httputil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) MarketplaceClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewMarketplaceClient(MarketplaceConfig{
		BaseURL: server.URL + "/",
		APIKey:  "secret-key",
	}, server.Client())
}

func TestNewMarketplaceClientDefaults(t *testing.T) {
	client := NewMarketplaceClient(MarketplaceConfig{}, nil)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())

	client = NewMarketplaceClient(MarketplaceConfig{BaseURL: "https://api.example.com//"}, nil)
	assert.Equal(t, "https://api.example.com", client.BaseURL())
}

func TestMarketplaceClient_CreateSubmission(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/publishers/blankon/submissions", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get("X-Request-Id"))
		assert.NoError(t, err)

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"plugin_id":"hello-world","version":"1.2.3"}`, string(body))

		httputil.ResponseData(map[string]string{"id": "sub_123"}, http.StatusCreated, w)
	})

	submission, err := client.CreateSubmission(context.Background(), "blankon", "hello-world", "1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "sub_123", submission.ID)
}

func TestMarketplaceClient_GenerateUploadURLs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/submissions/sub_123/upload-urls", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"architectures":["linux-x64","darwin-arm64"]}`, string(body))

		// no data envelope on this one
		httputil.ResponseJSON(map[string]interface{}{
			"urls": map[string]string{
				"linux-x64":    "https://storage.example.com/linux?sig=abc",
				"darwin-arm64": "https://storage.example.com/darwin?sig=def",
			},
		}, http.StatusOK, w)
	})

	urls, err := client.GenerateUploadURLs(context.Background(), "sub_123", []string{"linux-x64", "darwin-arm64"})
	require.NoError(t, err)
	assert.Equal(t, entity.UploadURLs{
		"linux-x64":    "https://storage.example.com/linux?sig=abc",
		"darwin-arm64": "https://storage.example.com/darwin?sig=def",
	}, urls)
}

func TestMarketplaceClient_SubmitForReview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/submissions/sub_123/submit", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)

		httputil.ResponseData(map[string]string{"id": "sub_123", "status": "pending"}, http.StatusOK, w)
	})

	submission, err := client.SubmitForReview(context.Background(), "sub_123")
	require.NoError(t, err)
	assert.Equal(t, entity.Submission{ID: "sub_123", Status: entity.StatusPending}, submission)
}

func TestMarketplaceClient_GetSubmission(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/submissions/sub%2F1", r.URL.EscapedPath())

		httputil.ResponseJSON(map[string]string{
			"id":        "sub/1",
			"status":    "in_review",
			"plugin_id": "hello-world",
			"version":   "1.2.3",
		}, http.StatusOK, w)
	})

	submission, err := client.GetSubmission(context.Background(), "sub/1")
	require.NoError(t, err)
	assert.Equal(t, entity.Submission{
		ID:       "sub/1",
		Status:   entity.StatusInReview,
		PluginID: "hello-world",
		Version:  "1.2.3",
	}, submission)
}

func TestMarketplaceClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "error field",
			status:      http.StatusConflict,
			body:        `{"error":"version already exists"}`,
			wantMessage: "API error 409: version already exists",
		},
		{
			name:        "message field",
			status:      http.StatusForbidden,
			body:        `{"message":"publisher not found"}`,
			wantMessage: "API error 403: publisher not found",
		},
		{
			name:        "error wins over message",
			status:      http.StatusBadRequest,
			body:        `{"error":"bad version","message":"ignored"}`,
			wantMessage: "API error 400: bad version",
		},
		{
			name:        "no known field",
			status:      http.StatusInternalServerError,
			body:        `{"detail":"boom"}`,
			wantMessage: "API error 500: Request failed (500)",
		},
		{
			name:        "not json",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "API error 502: Request failed (502)",
		},
		{
			name:        "empty body",
			status:      http.StatusUnauthorized,
			body:        ``,
			wantMessage: "API error 401: Request failed (401)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetSubmission(context.Background(), "sub_123")
			require.Error(t, err)
			assert.Equal(t, tt.wantMessage, err.Error())

			var apiErr APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestMarketplaceClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewMarketplaceClient(MarketplaceConfig{BaseURL: server.URL}, server.Client())
	server.Close()

	_, err := client.GetSubmission(context.Background(), "sub_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /v1/submissions/sub_123")

	var apiErr APIError
	assert.False(t, errors.As(err, &apiErr))
}

func Test_unwrapEnvelope(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "data object", raw: `{"data":{"id":"a"},"meta":{}}`, want: `{"id":"a"}`},
		{name: "data scalar", raw: `{"data":"x"}`, want: `"x"`},
		{name: "data null", raw: `{"data":null}`, want: `null`},
		{name: "no envelope", raw: `{"id":"a","status":"pending"}`, want: `{"id":"a","status":"pending"}`},
		{name: "array", raw: `[1,2]`, want: `[1,2]`},
		{name: "empty", raw: ``, want: `{}`},
		{name: "whitespace", raw: " \n", want: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(unwrapEnvelope([]byte(tt.raw))))
		})
	}
}
