package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blankon/irgsh-publish/internal/publish/entity"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...interface{})   { l.record(format, args...) }
func (l *recordingLogger) Infof(format string, args ...interface{})    { l.record(format, args...) }
func (l *recordingLogger) Warningf(format string, args ...interface{}) { l.record(format, args...) }
func (l *recordingLogger) Errorf(format string, args ...interface{})   { l.record(format, args...) }

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// steppingClock advances its own time on every After call and fires at once.
type steppingClock struct {
	now   time.Time
	waits []time.Duration
}

func (c *steppingClock) Now() time.Time {
	return c.now
}

func (c *steppingClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// statusSequence returns the given statuses in order and repeats the last one.
type statusSequence struct {
	mu       sync.Mutex
	statuses []entity.SubmissionStatus
	err      error
	calls    int
}

func (s *statusSequence) GetSubmission(ctx context.Context, submissionID string) (entity.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return entity.Submission{}, s.err
	}
	i := s.calls - 1
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	return entity.Submission{ID: submissionID, Status: s.statuses[i]}, nil
}

func (s *statusSequence) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeMarketplace struct {
	statusSequence

	calls []string

	createErr    error
	urlsErr      error
	submitErr    error
	urls         entity.UploadURLs
	submitStatus entity.SubmissionStatus

	gotSlug    string
	gotPlugin  string
	gotVersion string
	gotArchs   []string
}

func (f *fakeMarketplace) CreateSubmission(ctx context.Context, publisherSlug, pluginID, version string) (entity.Submission, error) {
	f.calls = append(f.calls, "create")
	f.gotSlug, f.gotPlugin, f.gotVersion = publisherSlug, pluginID, version
	if f.createErr != nil {
		return entity.Submission{}, f.createErr
	}
	return entity.Submission{ID: "sub_1", PluginID: pluginID, Version: version}, nil
}

func (f *fakeMarketplace) GenerateUploadURLs(ctx context.Context, submissionID string, architectures []string) (entity.UploadURLs, error) {
	f.calls = append(f.calls, "upload-urls")
	f.gotArchs = architectures
	if f.urlsErr != nil {
		return nil, f.urlsErr
	}
	if f.urls != nil {
		return f.urls, nil
	}
	urls := entity.UploadURLs{}
	for _, arch := range architectures {
		urls[arch] = "https://storage.example.com/" + arch + "?sig=x"
	}
	return urls, nil
}

func (f *fakeMarketplace) SubmitForReview(ctx context.Context, submissionID string) (entity.Submission, error) {
	f.calls = append(f.calls, "submit")
	if f.submitErr != nil {
		return entity.Submission{}, f.submitErr
	}
	return entity.Submission{ID: submissionID, Status: f.submitStatus}, nil
}

type fakeUploader struct {
	err     error
	called  bool
	gotDir  string
	gotURLs entity.UploadURLs
}

func (f *fakeUploader) UploadAll(ctx context.Context, artifactDir, pluginID string, urls entity.UploadURLs) error {
	f.called = true
	f.gotDir = artifactDir
	f.gotURLs = urls
	return f.err
}

type fakeWaiter struct {
	status     entity.SubmissionStatus
	err        error
	called     bool
	gotTimeout time.Duration
}

func (f *fakeWaiter) Wait(ctx context.Context, submissionID string, timeout time.Duration) (entity.SubmissionStatus, error) {
	f.called = true
	f.gotTimeout = timeout
	return f.status, f.err
}

type mapOutputs map[string]string

func (m mapOutputs) SetOutput(name, value string) error {
	m[name] = value
	return nil
}
