package usecase

import (
	"context"
	"time"

	"github.com/juju/clock"

	"github.com/blankon/irgsh-publish/internal/logging"
	"github.com/blankon/irgsh-publish/internal/publish/entity"
)

const (
	DefaultInitialPollDelay = 5 * time.Second
	DefaultMaxPollDelay     = 30 * time.Second
	DefaultPollFactor       = 1.5
)

// backoff is the poller's explicit loop state.
type backoff struct {
	delay    time.Duration
	max      time.Duration
	factor   float64
	deadline time.Time
}

func (b *backoff) grow() {
	b.delay = time.Duration(float64(b.delay) * b.factor)
	if b.delay > b.max {
		b.delay = b.max
	}
}

// Poller waits for a submission to leave the pending states.
type Poller struct {
	api          StatusFetcher
	clock        Clock
	logger       logging.Logger
	initialDelay time.Duration
	maxDelay     time.Duration
	factor       float64
}

// NewPoller returns a poller with the default 5s/x1.5/30s backoff. A nil
// clock means the wall clock, a nil logger the package logger.
func NewPoller(api StatusFetcher, clk Clock, logger logging.Logger) *Poller {
	if clk == nil {
		clk = clock.WallClock
	}
	if logger == nil {
		logger = logging.GetLogger("poll")
	}
	return &Poller{
		api:          api,
		clock:        clk,
		logger:       logger,
		initialDelay: DefaultInitialPollDelay,
		maxDelay:     DefaultMaxPollDelay,
		factor:       DefaultPollFactor,
	}
}

// Wait sleeps, queries once, and repeats until the status is terminal or the
// deadline computed at call time has passed. The deadline is only checked
// before each sleep, so the last query may land after it.
func (p *Poller) Wait(ctx context.Context, submissionID string, timeout time.Duration) (entity.SubmissionStatus, error) {
	if submissionID == "" {
		return "", ErrSubmissionIDMissing
	}

	state := backoff{
		delay:    p.initialDelay,
		max:      p.maxDelay,
		factor:   p.factor,
		deadline: p.clock.Now().Add(timeout),
	}

	p.logger.Infof("polling for submission %s approval (timeout: %ds)...", submissionID, int64(timeout/time.Second))

	for p.clock.Now().Before(state.deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-p.clock.After(state.delay):
		}

		submission, err := p.api.GetSubmission(ctx, submissionID)
		if err != nil {
			return "", err
		}
		p.logger.Infof("  status: %s", submission.Status)

		if submission.Status.IsTerminal() {
			return submission.Status, nil
		}
		state.grow()
	}

	return "", TimeoutError{Timeout: timeout}
}
