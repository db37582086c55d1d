// Package models defines the core data structures for users, job applications
// and the records attached to them.
package models

import (
	"fmt"
	"strings"
	"time"
)

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte `json:"-"`
	// CreatedAt is the sign-up time.
	CreatedAt time.Time `json:"created_at"`
}

// Status is the stage a job application has reached.
type Status string

const (
	// StatusDrafting is an application still being prepared.
	StatusDrafting Status = "drafting"
	// StatusApplied is a submitted application awaiting a response.
	StatusApplied Status = "applied"
	// StatusInterview means the candidate has been invited to interview.
	StatusInterview Status = "interview"
	// StatusOffer means an offer was extended.
	StatusOffer Status = "offer"
	// StatusRejected means the application was turned down.
	StatusRejected Status = "rejected"
	// StatusWithdrawn means the candidate withdrew.
	StatusWithdrawn Status = "withdrawn"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{
	StatusDrafting,
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// ReachedInterview reports whether an interview occurred or was passed.
func (s Status) ReachedInterview() bool {
	return s == StatusInterview || s == StatusOffer
}

// Application is a single job application owned by a user.
type Application struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Company       string     `json:"company"`
	Role          string     `json:"role"`
	Link          string     `json:"link"`
	Status        Status     `json:"status"`
	DueDate       *time.Time `json:"due_date"`
	SubmittedDate *time.Time `json:"submitted_date"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ApplicationInput carries the fields accepted when creating an application.
// Dates are ISO-8601 strings ("2026-02-14" or RFC 3339).
type ApplicationInput struct {
	Company       string `json:"company"`
	Role          string `json:"role"`
	Link          string `json:"link"`
	Status        string `json:"status"`
	DueDate       string `json:"due_date"`
	SubmittedDate string `json:"submitted_date"`
	Notes         string `json:"notes"`
}

// ApplicationPatch carries a partial update. Nil fields are left untouched;
// an empty date string clears the date.
type ApplicationPatch struct {
	Company       *string `json:"company"`
	Role          *string `json:"role"`
	Link          *string `json:"link"`
	Status        *string `json:"status"`
	DueDate       *string `json:"due_date"`
	SubmittedDate *string `json:"submitted_date"`
	Notes         *string `json:"notes"`
}

// ApplicationFilter narrows an application listing.
type ApplicationFilter struct {
	// Status keeps only applications in this status when non-empty.
	Status Status
	// Query is a case-insensitive substring matched against company, role and notes.
	Query string
}

// ApplicationStat is the projection the analytics summary is computed from.
type ApplicationStat struct {
	Status    Status
	CreatedAt time.Time
}

// Meta reports the caller's application quota.
type Meta struct {
	Count    int      `json:"count"`
	Limit    int      `json:"limit"`
	MaxUsers int      `json:"max_users"`
	Statuses []Status `json:"statuses"`
}

// Summary is the analytics dashboard payload.
type Summary struct {
	TotalApplications      int            `json:"total_applications"`
	ApplicationsLast30Days int            `json:"applications_last_30_days"`
	StatusBreakdown        map[Status]int `json:"status_breakdown"`
	InterviewRate          float64        `json:"interview_rate"`
}

// ChatTurn is one prior exchange supplied by the client. It is never stored.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ParseDate accepts a date-only value ("2006-01-02") or an RFC 3339 timestamp
// and returns it in UTC. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
}
