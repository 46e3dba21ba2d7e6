package fairness

import (
	"fmt"
	"time"
)

var refNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// staticHistory is a LastSeenIndex backed by a map keyed by id or normalized name.
type staticHistory map[string]time.Time

func (h staticHistory) LastSeen(entityID, normalizedName string) (time.Time, bool) {
	if t, ok := h[entityID]; ok {
		return t, true
	}
	t, ok := h[normalizedName]
	return t, ok
}

func member(id, name string, historical int) PoolMember {
	return PoolMember{ID: id, Name: name, HistoricalServiceCount: historical}
}

// assignments creates n records for the given name, one hour apart, ending before refNow.
func assignments(name string, n int) []AssignmentRecord {
	out := make([]AssignmentRecord, n)
	for i := range out {
		out[i] = AssignmentRecord{
			EntityName: name,
			Timestamp:  refNow.Add(-time.Duration(i+1) * time.Hour),
		}
	}
	return out
}

func numberedPool(prefix string, n int) []PoolMember {
	pool := make([]PoolMember, n)
	for i := range pool {
		pool[i] = member(fmt.Sprintf("%s-%02d", prefix, i+1), fmt.Sprintf("%s Elemento %02d", prefix, i+1), 10+i)
	}
	return pool
}
