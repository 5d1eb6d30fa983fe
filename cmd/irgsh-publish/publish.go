package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/juju/clock"
	"github.com/urfave/cli"

	"github.com/blankon/irgsh-publish/internal/actions"
	"github.com/blankon/irgsh-publish/internal/config"
	"github.com/blankon/irgsh-publish/internal/logging"
	"github.com/blankon/irgsh-publish/internal/notification"
	"github.com/blankon/irgsh-publish/internal/publish/repository"
	"github.com/blankon/irgsh-publish/internal/publish/usecase"
)

const unexpectedErrorMessage = "An unexpected error occurred"

func underscored(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// flagConfig collects the inputs given as flags or INPUT_* variables.
// GlobalString also resolves app level flags from a subcommand context.
func flagConfig(c *cli.Context) config.PublishConfig {
	return config.PublishConfig{
		APIKey:          c.GlobalString("api-key"),
		APIURL:          c.GlobalString("api-url"),
		PublisherSlug:   c.GlobalString("publisher-slug"),
		PluginID:        c.GlobalString("plugin-id"),
		Version:         config.Value(c.GlobalString("version")),
		ArtifactPath:    c.GlobalString("artifact-path"),
		Architectures:   c.GlobalString("architectures"),
		WaitForApproval: config.Value(c.GlobalString("wait-for-approval")),
		PollTimeout:     config.Value(c.GlobalString("poll-timeout")),
		NotifyWebhook:   c.GlobalString("notify-webhook"),
		MaxParallel:     c.GlobalInt("max-parallel"),
		LogLevel:        c.GlobalString("log-level"),
	}
}

// loadConfig merges the inputs on top of the config file, if any.
func loadConfig(path string, inputs config.PublishConfig) (cfg config.PublishConfig, err error) {
	if path != "" {
		cfg, err = config.LoadConfigFromPath(path)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return cfg, err
	}
	return cfg.Merge(inputs), nil
}

func newPublishRequest(cfg config.PublishConfig) usecase.PublishRequest {
	return usecase.PublishRequest{
		PublisherSlug:   cfg.PublisherSlug,
		PluginID:        cfg.PluginID,
		Version:         cfg.Version.String(),
		ArtifactPath:    cfg.ArtifactPath,
		Architectures:   config.ParseArchitectures(cfg.Architectures),
		WaitForApproval: config.ParseBool(cfg.WaitForApproval),
		PollTimeout:     config.ParsePollTimeout(cfg.PollTimeout),
	}
}

func newMarketplaceClient(cfg config.PublishConfig, httpClient *http.Client) repository.MarketplaceClient {
	return repository.NewMarketplaceClient(repository.MarketplaceConfig{
		BaseURL:   cfg.APIURL,
		APIKey:    cfg.APIKey,
		UserAgent: userAgent(),
	}, httpClient)
}

func userAgent() string {
	if app == nil || app.Version == "" {
		return "irgsh-publish"
	}
	return "irgsh-publish/" + app.Version
}

// runPublish runs the pipeline against cfg and reports the outcome to the
// webhook. The returned error is the pipeline error.
func runPublish(ctx context.Context, cfg config.PublishConfig, runtime *actions.Runtime, clk usecase.Clock, httpClient *http.Client) (usecase.PublishResult, error) {
	client := newMarketplaceClient(cfg, httpClient)
	uploader := repository.NewArtifactUploader(httpClient, cfg.MaxParallel)
	poller := usecase.NewPoller(client, clk, nil)
	publisher := usecase.NewPublishUsecase(client, uploader, poller, runtime, nil)

	req := newPublishRequest(cfg)
	result, err := publisher.Publish(ctx, req)

	info := notification.SubmissionNotificationInfo{
		PluginID:     req.PluginID,
		Version:      usecase.NormalizeVersion(req.Version),
		SubmissionID: result.SubmissionID,
		Status:       result.Status,
	}
	if err != nil {
		info.Failure = failureMessage(err)
	}
	notification.NewNotifier(cfg.NotifyWebhook, httpClient).NotifySubmission(ctx, info)

	return result, err
}

func failureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return unexpectedErrorMessage
	}
	return err.Error()
}

func fail(runtime *actions.Runtime, err error) error {
	runtime.SetFailed(failureMessage(err))
	return cli.NewExitError("", 1)
}

func publishAction(c *cli.Context) error {
	runtime := actions.NewRuntime()

	cfg, err := loadConfig(configPath, flagConfig(c))
	if err == nil {
		err = cfg.Validate()
	}
	if err == nil {
		err = logging.Setup(os.Stdout, cfg.LogLevel)
	}
	if err != nil {
		return fail(runtime, err)
	}

	_, err = runPublish(context.Background(), cfg, runtime, clock.WallClock, nil)
	if err != nil {
		return fail(runtime, err)
	}
	return nil
}

// runStatus prints one submission, without polling.
func runStatus(ctx context.Context, cfg config.PublishConfig, submissionID string, out io.Writer, httpClient *http.Client) error {
	if submissionID == "" {
		return usecase.ErrSubmissionIDMissing
	}
	submission, err := newMarketplaceClient(cfg, httpClient).GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "submission: %s\n", submission.ID)
	if submission.PluginID != "" {
		fmt.Fprintf(out, "plugin: %s@%s\n", submission.PluginID, submission.Version)
	}
	fmt.Fprintf(out, "status: %s\n", submission.Status)
	return nil
}

func statusAction(c *cli.Context) error {
	runtime := actions.NewRuntime()

	cfg, err := loadConfig(configPath, flagConfig(c))
	if err == nil {
		err = cfg.ValidateFields("APIKey", "APIURL", "LogLevel")
	}
	if err == nil {
		err = logging.Setup(os.Stdout, cfg.LogLevel)
	}
	if err != nil {
		return fail(runtime, err)
	}

	if err = runStatus(context.Background(), cfg, c.Args().First(), os.Stdout, nil); err != nil {
		return fail(runtime, err)
	}
	return nil
}
