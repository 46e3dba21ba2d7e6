package fairness

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every boundary validation failure.
var ErrInvalidInput = errors.New("invalid fairness input")

func validatePool(pool []PoolMember) error {
	seen := make(map[string]bool, len(pool))
	for i, m := range pool {
		if m.ID == "" {
			return fmt.Errorf("%w: pool member at index %d has no id", ErrInvalidInput, i)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate pool member id %q", ErrInvalidInput, m.ID)
		}
		seen[m.ID] = true

		if m.HistoricalServiceCount < 0 {
			return fmt.Errorf("%w: pool member %q has negative historical service count (%d)", ErrInvalidInput, m.ID, m.HistoricalServiceCount)
		}
		if m.ScoreTotal != nil && (math.IsNaN(*m.ScoreTotal) || math.IsInf(*m.ScoreTotal, 0)) {
			return fmt.Errorf("%w: pool member %q has a non-finite score", ErrInvalidInput, m.ID)
		}
	}
	return nil
}

func validateRecords(records []AssignmentRecord) error {
	for i, r := range records {
		if r.EntityID == "" && Normalize(r.EntityName) == "" {
			return fmt.Errorf("%w: assignment at index %d has neither entity id nor name", ErrInvalidInput, i)
		}
		if r.Timestamp.IsZero() {
			return fmt.Errorf("%w: assignment at index %d has no timestamp", ErrInvalidInput, i)
		}
	}
	return nil
}

// ValidateRecords checks assignment records as Compute would. External
// provider records are exempt since they never enter the analysis.
func ValidateRecords(records []AssignmentRecord) error {
	kept := make([]AssignmentRecord, 0, len(records))
	for _, r := range records {
		if !r.ExcludedProvider {
			kept = append(kept, r)
		}
	}
	return validateRecords(kept)
}
