package entity

// SubmissionStatus is the review state reported by the marketplace. The
// service may introduce new values at any time; anything that is not one of
// the terminal statuses below is treated as still pending.
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusInReview  SubmissionStatus = "in_review"
	StatusApproved  SubmissionStatus = "approved"
	StatusRejected  SubmissionStatus = "rejected"
	StatusWithdrawn SubmissionStatus = "withdrawn"
)

// IsTerminal reports whether no further transition can happen.
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

func (s SubmissionStatus) String() string {
	return string(s)
}

type Submission struct {
	ID       string           `json:"id"`
	Status   SubmissionStatus `json:"status,omitempty"`
	PluginID string           `json:"plugin_id,omitempty"`
	Version  string           `json:"version,omitempty"`
}

type CreateSubmissionRequest struct {
	PluginID string `json:"plugin_id"`
	Version  string `json:"version"`
}
