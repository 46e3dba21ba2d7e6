package assignments

import (
	"fmt"
	"time"

	"fairness-mcp/internal/fairness"
)

// Record is a single historical assignment as persisted in the JSONL cache.
type Record struct {
	// EntityID is the upstream identifier of the assigned person, when known.
	EntityID string `json:"entityId,omitempty"`
	// EntityName is the display name as recorded at assignment time.
	EntityName string `json:"entityName"`
	// Timestamp is when the service was assigned (Unix microseconds).
	Timestamp int64 `json:"ts"`
	// ExcludedProvider marks assignments served by an external provider.
	ExcludedProvider bool `json:"excludedProvider,omitempty"`
}

// FromAssignments converts engine records into their persisted form.
func FromAssignments(in []fairness.AssignmentRecord) []Record {
	out := make([]Record, 0, len(in))
	for _, a := range in {
		out = append(out, Record{
			EntityID:         a.EntityID,
			EntityName:       a.EntityName,
			Timestamp:        a.Timestamp.UnixMicro(),
			ExcludedProvider: a.ExcludedProvider,
		})
	}
	return out
}

// Assignment converts the record back into the engine type.
func (r Record) Assignment() fairness.AssignmentRecord {
	return fairness.AssignmentRecord{
		EntityID:         r.EntityID,
		EntityName:       r.EntityName,
		Timestamp:        time.UnixMicro(r.Timestamp).UTC(),
		ExcludedProvider: r.ExcludedProvider,
	}
}

// identity is the deduplication key: the same person assigned at the same instant.
func (r Record) identity() string {
	return fmt.Sprintf("%s|%s|%d", r.EntityID, fairness.Normalize(r.EntityName), r.Timestamp)
}
