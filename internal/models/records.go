package models

import (
	"fmt"
	"strings"
	"time"
)

// DeliverableKind classifies a deliverable.
type DeliverableKind string

const (
	KindEssay       DeliverableKind = "essay"
	KindQuestion    DeliverableKind = "question"
	KindResume      DeliverableKind = "resume"
	KindCoverLetter DeliverableKind = "cover_letter"
	KindForm        DeliverableKind = "form"
	KindOther       DeliverableKind = "other"
)

// DeliverableState is how far along a deliverable is.
type DeliverableState string

const (
	StateNotStarted DeliverableState = "not_started"
	StateInProgress DeliverableState = "in_progress"
	StateDone       DeliverableState = "done"
)

// Deliverable is a task tied to one application (an essay, a form, a resume).
// Content holds the draft or answers. Completed mirrors State == StateDone.
type Deliverable struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Description   string           `json:"description"`
	Kind          DeliverableKind  `json:"kind"`
	DueDate       *time.Time       `json:"due_date"`
	State         DeliverableState `json:"state"`
	Content       string           `json:"content"`
	Completed     bool             `json:"completed"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// SetState moves d to st and keeps Completed in step.
func (d *Deliverable) SetState(st DeliverableState) {
	d.State = st
	d.Completed = st == StateDone
}

// SetCompleted marks d done, or reopens it as in progress.
func (d *Deliverable) SetCompleted(done bool) {
	switch {
	case done:
		d.SetState(StateDone)
	case d.State == StateDone:
		d.SetState(StateInProgress)
	default:
		d.Completed = false
	}
}

// DeliverableInput carries the fields accepted when creating a deliverable.
type DeliverableInput struct {
	ApplicationID string `json:"application_id"`
	Description   string `json:"description"`
	Kind          string `json:"kind"`
	DueDate       string `json:"due_date"`
	State         string `json:"state"`
	Content       string `json:"content"`
	Completed     bool   `json:"completed"`
}

// DeliverablePatch carries a partial deliverable update. State wins over
// Completed when both are present.
type DeliverablePatch struct {
	Description *string `json:"description"`
	Kind        *string `json:"kind"`
	DueDate     *string `json:"due_date"`
	State       *string `json:"state"`
	Content     *string `json:"content"`
	Completed   *bool   `json:"completed"`
}

// WritingNote is free-form text attached to an application.
type WritingNote struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Title         string    `json:"title"`
	Tags          []string  `json:"tags"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WritingNoteInput carries the fields accepted when creating a writing note.
type WritingNoteInput struct {
	ApplicationID string   `json:"application_id"`
	Title         string   `json:"title"`
	Tags          []string `json:"tags"`
	Content       string   `json:"content"`
}

// WritingNotePatch carries a partial writing note update.
type WritingNotePatch struct {
	Title   *string   `json:"title"`
	Tags    *[]string `json:"tags"`
	Content *string   `json:"content"`
}

// WritingFilter narrows a writing note listing.
type WritingFilter struct {
	ApplicationID string
	// Query is a case-insensitive substring matched against title, tags and content.
	Query string
}

// ParseDeliverableKind normalizes s, defaulting to KindOther when empty.
func ParseDeliverableKind(s string) (DeliverableKind, error) {
	switch k := DeliverableKind(normalizeKind(s)); k {
	case "":
		return KindOther, nil
	case KindEssay, KindQuestion, KindResume, KindCoverLetter, KindForm, KindOther:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown deliverable kind %q", ErrInvalidInput, s)
	}
}

// ParseDeliverableState normalizes s ("In progress" becomes in_progress),
// defaulting to StateNotStarted when empty.
func ParseDeliverableState(s string) (DeliverableState, error) {
	switch st := DeliverableState(normalizeKind(s)); st {
	case "":
		return StateNotStarted, nil
	case StateNotStarted, StateInProgress, StateDone:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown deliverable state %q", ErrInvalidInput, s)
	}
}

// NormalizeTags trims and lowercases tags, dropping blanks and duplicates.
// A single entry may hold several comma-separated tags. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, raw := range tags {
		for _, t := range strings.Split(raw, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func normalizeKind(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}
