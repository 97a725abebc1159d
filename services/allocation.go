package services

import (
	"fmt"

	"github.com/yeremiapane/restaurant-seating/models"
)

// SelectTable returns the vacant table with the smallest capacity that still
// fits the party. Ties go to the lower table number, so the result does not
// depend on the order of tables.
func SelectTable(tables []*models.Table, partySize int) (*models.Table, error) {
	if partySize < 1 {
		return nil, models.ErrInvalidGuests
	}

	var best *models.Table
	for _, t := range tables {
		if t.Status != models.StatusVacant || t.MaxGuests < partySize {
			continue
		}
		if best == nil ||
			t.MaxGuests < best.MaxGuests ||
			(t.MaxGuests == best.MaxGuests && t.Number < best.Number) {
			best = t
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: party of %d", models.ErrAllocationFailed, partySize)
	}
	return best, nil
}
