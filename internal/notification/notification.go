package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/blankon/irgsh-publish/internal/logging"
	"github.com/blankon/irgsh-publish/internal/publish/entity"
	"github.com/blankon/irgsh-publish/pkg/httputil"
)

const (
	webhookMaxAttempts = 3
	webhookRetryDelay  = 2 * time.Second
)

var logger = logging.GetLogger("notification")

// WebhookPayload represents the notification payload sent to webhook
type WebhookPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SubmissionNotificationInfo describes the outcome of a publish run.
type SubmissionNotificationInfo struct {
	PluginID     string
	Version      string
	SubmissionID string
	Status       entity.SubmissionStatus
	// Failure is the error message of a failed run, empty on success.
	Failure string
}

// Notifier posts run summaries to a webhook.
type Notifier struct {
	WebhookURL string
	Client     *http.Client
	RetryDelay time.Duration
}

func NewNotifier(webhookURL string, client *http.Client) *Notifier {
	return &Notifier{
		WebhookURL: webhookURL,
		Client:     client,
		RetryDelay: webhookRetryDelay,
	}
}

// SendWebhook sends a notification to the configured webhook URL
func (n *Notifier) SendWebhook(ctx context.Context, title, message string) error {
	if n.WebhookURL == "" {
		logger.Debugf("notification webhook URL not configured, skipping notification")
		return nil
	}

	payload := WebhookPayload{
		Title:   title,
		Message: message,
	}

	err := httputil.PostJSONWithRetry(ctx, n.Client, n.WebhookURL, payload, webhookMaxAttempts, n.RetryDelay,
		func(attempt, maxAttempts int, err error) {
			logger.Warningf("notification attempt %d/%d failed: %v", attempt, maxAttempts, err)
		})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	logger.Infof("notification sent: %s", title)
	return nil
}

// NotifySubmission builds the summary for a run and sends it. Errors are
// logged only.
func (n *Notifier) NotifySubmission(ctx context.Context, info SubmissionNotificationInfo) {
	title, message := FormatSubmission(info)
	logger.Debugf("notification: %s - %s", title, message)

	if err := n.SendWebhook(ctx, title, message); err != nil {
		logger.Errorf("failed to send submission notification: %v", err)
	}
}

// FormatSubmission returns the webhook title and message for a run, e.g.
// "📦 hello-world@1.2.3 (sub_123) approved ✅".
func FormatSubmission(info SubmissionNotificationInfo) (title, message string) {
	outcome := string(info.Status)
	if info.Failure != "" {
		outcome = "failed"
	}
	if outcome == "" {
		outcome = "submitted"
	}
	title = fmt.Sprintf("Marketplace submission %s", outcome)

	var emoji string
	switch {
	case info.Failure != "", info.Status == entity.StatusRejected:
		emoji = "❌"
	case info.Status == entity.StatusApproved:
		emoji = "✅"
	case info.Status == entity.StatusWithdrawn:
		emoji = "↩️"
	default:
		emoji = "⏳"
	}

	submission := ""
	if info.SubmissionID != "" {
		submission = fmt.Sprintf(" (%s)", info.SubmissionID)
	}

	message = fmt.Sprintf("📦 %s@%s%s %s %s", info.PluginID, info.Version, submission, outcome, emoji)
	if info.Failure != "" {
		message = fmt.Sprintf("%s: %s", message, info.Failure)
	}
	return title, message
}
