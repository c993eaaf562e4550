package domain

import "time"

type ApplicationStatus string

const (
	StatusPendingReviewer ApplicationStatus = "pending_reviewer"
	StatusPendingAdmin    ApplicationStatus = "pending_admin"
	StatusApproved        ApplicationStatus = "approved"
	StatusRejected        ApplicationStatus = "rejected"
	StatusCancelled       ApplicationStatus = "cancelled"
)

// LineItem is one (material, quantity) pair within an application.
type LineItem struct {
	MaterialID string
	Quantity   int
}

// Application is a reservation request for a venue plus materials over
// [StartsAt, EndsAt). Applications are never deleted; terminal statuses are
// kept for audit.
type Application struct {
	ID                  string
	RequesterID         string
	ActivityName        string
	ActivityDescription string
	VenueID             string
	StartsAt            time.Time
	EndsAt              time.Time
	Items               []LineItem
	Status              ApplicationStatus
	ReviewerID          *string
	RejectionReason     *string
	CreatedAt           time.Time
	ReviewedAt          *time.Time
	UpdatedAt           time.Time
}

// IsActive reports whether the application still counts toward venue
// conflicts and inventory consumption.
func (a Application) IsActive() bool {
	return a.Status != StatusCancelled && a.Status != StatusRejected
}

// IsTerminal reports whether the status admits no further transitions.
func (a Application) IsTerminal() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected || a.Status == StatusCancelled
}

// Overlaps applies strict interval-overlap semantics on [start, end):
// touching endpoints do not conflict.
func (a Application) Overlaps(start, end time.Time) bool {
	return a.EndsAt.After(start) && a.StartsAt.Before(end)
}
