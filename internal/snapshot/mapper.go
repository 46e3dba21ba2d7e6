package snapshot

import (
	"fmt"
	"time"

	"fairness-mcp/internal/fairness"
)

// ParseTime accepts RFC3339 with or without fractional seconds.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// ParseKind maps the wire label onto an entity kind.
func ParseKind(s string) (fairness.EntityKind, error) {
	switch k := fairness.EntityKind(s); k {
	case fairness.Custodians, fairness.ArmedGuards:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidSnapshot, s)
}

// ReferenceTime parses the snapshot's now field.
func (f *File) ReferenceTime() (time.Time, error) {
	now, err := ParseTime(f.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: now: %v", ErrInvalidSnapshot, err)
	}
	return now, nil
}

// MapSection transforms a wire section into engine inputs.
func MapSection(s Section) (fairness.EntityKind, []fairness.PoolMember, []fairness.AssignmentRecord, error) {
	kind, err := ParseKind(s.Kind)
	if err != nil {
		return "", nil, nil, err
	}

	pool := make([]fairness.PoolMember, 0, len(s.Pool))
	for i, m := range s.Pool {
		member := fairness.PoolMember{
			ID:                     m.ID,
			Name:                   m.Name,
			HistoricalServiceCount: m.HistoricalServiceCount,
			Zone:                   m.Zone,
			ScoreTotal:             m.ScoreTotal,
		}
		if m.LastServiceAt != "" {
			t, err := ParseTime(m.LastServiceAt)
			if err != nil {
				return "", nil, nil, fmt.Errorf("%w: pool[%d].lastServiceAt: %v", ErrInvalidSnapshot, i, err)
			}
			member.LastServiceAt = &t
		}
		pool = append(pool, member)
	}

	records, err := MapAssignments(s.Assignments)
	if err != nil {
		return "", nil, nil, err
	}
	return kind, pool, records, nil
}

// MapAssignments transforms wire assignments into engine records.
func MapAssignments(in []Assignment) ([]fairness.AssignmentRecord, error) {
	records := make([]fairness.AssignmentRecord, 0, len(in))
	for i, a := range in {
		t, err := ParseTime(a.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: assignments[%d].timestamp: %v", ErrInvalidSnapshot, i, err)
		}
		records = append(records, fairness.AssignmentRecord{
			EntityID:         a.EntityID,
			EntityName:       a.EntityName,
			Timestamp:        t,
			ExcludedProvider: a.ExcludedProvider,
		})
	}
	return records, nil
}

// FromEngine renders engine inputs back into a wire section.
func FromEngine(kind fairness.EntityKind, pool []fairness.PoolMember, records []fairness.AssignmentRecord) Section {
	s := Section{
		Kind:        string(kind),
		Pool:        make([]PoolMember, 0, len(pool)),
		Assignments: make([]Assignment, 0, len(records)),
	}
	for _, m := range pool {
		pm := PoolMember{
			ID:                     m.ID,
			Name:                   m.Name,
			HistoricalServiceCount: m.HistoricalServiceCount,
			Zone:                   m.Zone,
			ScoreTotal:             m.ScoreTotal,
		}
		if m.LastServiceAt != nil {
			pm.LastServiceAt = m.LastServiceAt.UTC().Format(time.RFC3339)
		}
		s.Pool = append(s.Pool, pm)
	}
	for _, r := range records {
		s.Assignments = append(s.Assignments, Assignment{
			EntityID:         r.EntityID,
			EntityName:       r.EntityName,
			Timestamp:        r.Timestamp.UTC().Format(time.RFC3339),
			ExcludedProvider: r.ExcludedProvider,
		})
	}
	return s
}
