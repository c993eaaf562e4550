package domain

import "time"

type VenueStatus string

const (
	VenueStatusAvailable   VenueStatus = "available"
	VenueStatusMaintenance VenueStatus = "maintenance"
)

// Venue represents a bookable space. A venue in maintenance accepts no new
// active bookings.
type Venue struct {
	ID          string
	Name        string
	Location    string
	Capacity    int
	Description string
	Equipment   []string
	Status      VenueStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (v Venue) IsAvailable() bool {
	return v.Status == VenueStatusAvailable
}
