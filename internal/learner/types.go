// Package learner defines core types shared across subsystems.
package learner

import "time"

// MaxDeltaSeconds is the largest progress delta the platform accepts per
// call; anything above it is silently capped server-side and wasted.
const MaxDeltaSeconds = 60

// ItemStatus represents the study state a catalog row advertises.
type ItemStatus string

// Item status values recognized in catalog rows.
const (
	StatusInProgress ItemStatus = "in_progress"
	StatusNotStarted ItemStatus = "not_started"
	StatusCompleted  ItemStatus = "completed"
	StatusUnknown    ItemStatus = "unknown"
)

// Schedulable reports whether an item in this status should be worked on.
func (s ItemStatus) Schedulable() bool {
	return s == StatusInProgress || s == StatusNotStarted
}

// CatalogItem is one learning unit parsed from the remote catalog. It is
// immutable once parsed; workers track remaining time separately.
type CatalogItem struct {
	ID               int
	Name             string
	TotalMinutes     int
	CompletedMinutes int
	Status           ItemStatus
}

// RequiredSeconds returns the outstanding study time in seconds, never
// negative even when the platform reports more completed than total.
func (c CatalogItem) RequiredSeconds() int {
	remaining := (c.TotalMinutes - c.CompletedMinutes) * 60
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PageToken carries the anti-forgery triple extracted from one catalog page.
// A token is only valid for requesting the page that follows the page it was
// extracted from; stale tokens must never be reused.
type PageToken struct {
	ViewState  string
	Generator  string
	Validation string
}

// Empty reports whether the token is unusable for a follow-up page request.
func (t PageToken) Empty() bool {
	return t.ViewState == ""
}

// ItemParameters holds the six opaque session tokens required to submit
// progress for one item. All six are mandatory; a partial set is unusable.
type ItemParameters struct {
	NewID     string
	RefID     string
	StudentID string
	PassLine  string
	StudyTime string
	SessionID string
}

// Complete reports whether every required token is present.
func (p ItemParameters) Complete() bool {
	return p.NewID != "" && p.RefID != "" && p.StudentID != "" &&
		p.PassLine != "" && p.StudyTime != "" && p.SessionID != ""
}

// SubmissionOutcome is the terminal result of one worker: either a cumulative
// submitted-seconds total or a failure, never both.
type SubmissionOutcome struct {
	ItemID           int
	ItemName         string
	SubmittedSeconds int
	Submissions      int
	Err              error
}

// Succeeded reports whether the worker finished its item.
func (o SubmissionOutcome) Succeeded() bool {
	return o.Err == nil
}

// Summary aggregates one orchestrator run.
type Summary struct {
	Discovered       int
	Resolved         int
	Scheduled        int
	Dropped          int
	Succeeded        int
	Failed           int
	Cancelled        int
	SubmittedSeconds int
	Elapsed          time.Duration
}
