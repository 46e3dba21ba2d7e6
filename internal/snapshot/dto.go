package snapshot

// File is the on-disk snapshot consumed by the CLI and the file-based tool.
type File struct {
	Now             string    `json:"now" jsonschema:"reference time in RFC3339 anchoring the inactivity window"`
	ExcludeInactive bool      `json:"excludeInactive,omitempty" jsonschema:"drop idle pool members with no assignment in the last 90 days"`
	Sections        []Section `json:"sections" jsonschema:"one entry per personnel pool to analyse"`
}

// Section carries the pool and the period assignments for one entity kind.
type Section struct {
	Kind        string       `json:"kind" jsonschema:"entity kind: custodios or armados"`
	Pool        []PoolMember `json:"pool" jsonschema:"registered active members eligible for assignment"`
	Assignments []Assignment `json:"assignments" jsonschema:"assignments observed in the analysed period"`
}

// PoolMember is the wire form of a registered member.
type PoolMember struct {
	ID                     string   `json:"id" jsonschema:"stable member identifier"`
	Name                   string   `json:"name" jsonschema:"display name"`
	HistoricalServiceCount int      `json:"historicalServiceCount,omitempty" jsonschema:"services completed before the analysed period"`
	Zone                   *string  `json:"zone,omitempty"`
	ScoreTotal             *float64 `json:"scoreTotal,omitempty"`
	LastServiceAt          string   `json:"lastServiceAt,omitempty" jsonschema:"last known assignment in RFC3339, if the source tracks it"`
}

// Assignment is the wire form of one observed assignment.
type Assignment struct {
	EntityID         string `json:"entityId,omitempty" jsonschema:"assignee id when the source records it"`
	EntityName       string `json:"entityName" jsonschema:"assignee name as typed in the source system"`
	Timestamp        string `json:"timestamp" jsonschema:"assignment time in RFC3339"`
	ExcludedProvider bool   `json:"excludedProvider,omitempty" jsonschema:"served by an external provider"`
}
