// Package inventory implements the material ledger: bounds-checked reserve
// and clamped release. The ledger mutates Material values in memory; the
// coordinator persists the result inside its transaction.
package inventory

import (
	"github.com/mafirs/campus-reserve/internal/clock"
	"github.com/mafirs/campus-reserve/internal/domain"
)

type Ledger struct {
	clock clock.Clock
}

func NewLedger(clk clock.Clock) *Ledger {
	return &Ledger{clock: clk}
}

// Reserve decrements available stock by quantity. It fails without mutating
// the material unless the material is flagged available and has at least
// quantity units on hand.
func (l *Ledger) Reserve(m *domain.Material, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if !m.IsAvailable() {
		return domain.ErrMaterialUnavailable
	}
	if m.AvailableQuantity < quantity {
		return &domain.InsufficientInventoryError{
			MaterialID: m.ID,
			Requested:  quantity,
			Available:  m.AvailableQuantity,
		}
	}

	m.AvailableQuantity -= quantity
	m.UpdatedAt = l.clock.Now()
	return nil
}

// Release returns quantity units to available stock, clamped at the total
// so a double release can never push the ledger past its ceiling.
func (l *Ledger) Release(m *domain.Material, quantity int) {
	if quantity <= 0 {
		return
	}

	m.AvailableQuantity += quantity
	if m.AvailableQuantity > m.TotalQuantity {
		m.AvailableQuantity = m.TotalQuantity
	}
	m.UpdatedAt = l.clock.Now()
}
