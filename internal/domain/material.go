package domain

import "time"

type MaterialStatus string

const (
	MaterialStatusAvailable   MaterialStatus = "available"
	MaterialStatusUnavailable MaterialStatus = "unavailable"
)

type StockStatus string

const (
	StockSufficient   StockStatus = "sufficient"
	StockLow          StockStatus = "low"
	StockInsufficient StockStatus = "insufficient"
)

// Material represents consumable inventory. AvailableQuantity only changes
// through ledger reserve/release; 0 <= AvailableQuantity <= TotalQuantity
// holds at all times.
type Material struct {
	ID                string
	Name              string
	Category          string
	TotalQuantity     int
	AvailableQuantity int
	Unit              string
	Description       string
	Status            MaterialStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (m Material) IsAvailable() bool {
	return m.Status == MaterialStatusAvailable
}

// ReservedQuantity is the stock currently held by active applications.
func (m Material) ReservedQuantity() int {
	return m.TotalQuantity - m.AvailableQuantity
}

// StockStatus classifies how well current stock covers a requested quantity.
func (m Material) StockStatus(requested int) StockStatus {
	switch {
	case m.AvailableQuantity >= requested:
		return StockSufficient
	case m.AvailableQuantity > 0:
		return StockLow
	default:
		return StockInsufficient
	}
}
