package app

import (
	"context"
	"time"

	"github.com/mafirs/campus-reserve/internal/domain"
)

// OverlapQuerier answers whether an active application blocks a venue
// during a window. excludeID lets transition paths ignore the application
// being acted on; pass "" otherwise.
type OverlapQuerier interface {
	FindBlockingApplication(ctx context.Context, venueID string, start, end time.Time, excludeID string) (string, error)
}

// ConflictDetector checks a venue/interval pair against active bookings.
// It is a pure query; the coordinator runs it inside its transaction so the
// answer holds until commit.
type ConflictDetector struct {
	repo OverlapQuerier
}

func NewConflictDetector(repo OverlapQuerier) *ConflictDetector {
	return &ConflictDetector{repo: repo}
}

// Check returns nil when [start, end) is free on the venue, and a
// SchedulingConflictError naming the blocking application otherwise.
func (d *ConflictDetector) Check(ctx context.Context, venueID string, start, end time.Time, excludeID string) error {
	blockingID, err := d.repo.FindBlockingApplication(ctx, venueID, start, end, excludeID)
	if err != nil {
		return err
	}
	if blockingID != "" {
		return &domain.SchedulingConflictError{VenueID: venueID, BlockingApplicationID: blockingID}
	}
	return nil
}
