package mcp

import (
	"fairness-mcp/internal/snapshot"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AnalyzeInput is the argument set of analyze_fairness.
type AnalyzeInput struct {
	Kind                 string                `json:"kind" jsonschema:"entity kind: custodios or armados"`
	Now                  string                `json:"now,omitempty" jsonschema:"reference time in RFC3339; required with excludeInactive, otherwise defaults to the server clock"`
	ExcludeInactive      *bool                 `json:"excludeInactive,omitempty" jsonschema:"drop idle pool members with no assignment in the last 90 days; defaults to server configuration"`
	Pool                 []snapshot.PoolMember `json:"pool" jsonschema:"registered active members eligible for assignment"`
	Assignments          []snapshot.Assignment `json:"assignments" jsonschema:"assignments observed in the analysed period"`
	IncludeAllDeviations bool                  `json:"includeAllDeviations,omitempty" jsonschema:"return every entity's deviation, not only the top outliers"`
}

// AnalyzeFileInput is the argument set of analyze_fairness_file.
type AnalyzeFileInput struct {
	Path            string `json:"path" jsonschema:"path to a snapshot JSON file with now and sections"`
	ExcludeInactive *bool  `json:"excludeInactive,omitempty" jsonschema:"overrides the snapshot's excludeInactive flag"`
}

// RecordInput is the argument set of record_assignments.
type RecordInput struct {
	Kind        string                `json:"kind" jsonschema:"entity kind: custodios or armados"`
	Assignments []snapshot.Assignment `json:"assignments" jsonschema:"assignments to merge into the history used by the inactivity rule"`
}

// EmptyInput is used by tools without arguments.
type EmptyInput struct{}

func (s *Server) registerTools(server *sdk.Server) {
	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_fairness",
		Description: "Compute the assignment equity report for one personnel pool: Gini, Shannon entropy, HHI and Palma indices, " +
			"z-score deviation classes, pool coverage and idle members, and alerts with recommendations.",
	}, s.handleAnalyzeFairness)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "analyze_fairness_file",
		Description: "Compute equity reports for every section of a snapshot file on the server (custodios and armados analysed concurrently).",
	}, s.handleAnalyzeFairnessFile)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "get_fairness_thresholds",
		Description: "Return the interpretation and alert thresholds in effect (Gini and HHI bands, z-score classes, inactivity window).",
	}, s.handleGetThresholds)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "record_assignments",
		Description: "Merge historical assignments into the server's history so the 90-day inactivity rule can see beyond the analysed period.",
	}, s.handleRecordAssignments)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "get_history_summary",
		Description: "Summarise the stored assignment history per entity kind and the report cache usage.",
	}, s.handleHistorySummary)
}
