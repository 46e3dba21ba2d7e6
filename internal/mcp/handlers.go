package mcp

import (
	"context"
	"fmt"
	"time"

	"fairness-mcp/internal/analyzer"
	"fairness-mcp/internal/fairness"
	"fairness-mcp/internal/reportcache"
	"fairness-mcp/internal/snapshot"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

type reportResponse struct {
	RunID         string                     `json:"runId"`
	Kind          fairness.EntityKind        `json:"kind"`
	Cached        bool                       `json:"cached"`
	Report        *fairness.Report           `json:"report"`
	AllDeviations []fairness.DeviationRecord `json:"allDeviations,omitempty"`
}

type historySummary struct {
	Kind          fairness.EntityKind `json:"kind"`
	Records       int                 `json:"records"`
	LatestService *time.Time          `json:"latestService,omitempty"`
}

func (s *Server) handleAnalyzeFairness(ctx context.Context, _ *sdk.CallToolRequest, in AnalyzeInput) (*sdk.CallToolResult, any, error) {
	kind, pool, records, err := snapshot.MapSection(snapshot.Section{Kind: in.Kind, Pool: in.Pool, Assignments: in.Assignments})
	if err != nil {
		return nil, nil, err
	}

	exclude := s.excludeInactive(in.ExcludeInactive)
	now, err := s.referenceTime(in.Now, exclude)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.analyzer.Analyze(ctx, analyzer.Request{
		Kind:            kind,
		Pool:            pool,
		Assignments:     records,
		Now:             now,
		ExcludeInactive: exclude,
	})
	if err != nil {
		log.Error().Err(err).Str("kind", in.Kind).Msg("analyze_fairness failed")
		return nil, nil, err
	}

	resp := toResponse(res)
	if in.IncludeAllDeviations {
		resp.AllDeviations = res.Report.AllDeviations()
	}
	return s.result(resp, s.charts(res.Report)...), nil, nil
}

func (s *Server) handleAnalyzeFairnessFile(ctx context.Context, _ *sdk.CallToolRequest, in AnalyzeFileInput) (*sdk.CallToolResult, any, error) {
	f, err := snapshot.ReadFile(in.Path)
	if err != nil {
		return nil, nil, err
	}

	results, err := s.analyzer.AnalyzeSnapshot(ctx, f, in.ExcludeInactive)
	if err != nil {
		log.Error().Err(err).Str("path", in.Path).Msg("analyze_fairness_file failed")
		return nil, nil, err
	}

	resp := make([]reportResponse, 0, len(results))
	var charts []string
	for _, res := range results {
		resp = append(resp, toResponse(res))
		charts = append(charts, s.charts(res.Report)...)
	}
	return s.result(resp, charts...), nil, nil
}

func (s *Server) handleGetThresholds(_ context.Context, _ *sdk.CallToolRequest, _ EmptyInput) (*sdk.CallToolResult, any, error) {
	th := s.analyzer.Thresholds()
	return s.result(map[string]any{
		"thresholds":             th,
		"inactivityWindowDays":   th.InactivityWindow.Hours() / 24,
		"excludeInactiveDefault": s.cfg.ExcludeInactive,
	}), nil, nil
}

func (s *Server) handleRecordAssignments(_ context.Context, _ *sdk.CallToolRequest, in RecordInput) (*sdk.CallToolResult, any, error) {
	kind, err := snapshot.ParseKind(in.Kind)
	if err != nil {
		return nil, nil, err
	}
	records, err := snapshot.MapAssignments(in.Assignments)
	if err != nil {
		return nil, nil, err
	}

	added, err := s.analyzer.Record(kind, records)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("kind", in.Kind).Int("added", added).Msg("Assignments recorded")

	return s.result(map[string]any{
		"kind":       kind,
		"received":   len(records),
		"added":      added,
		"duplicates": len(records) - added,
		"stored":     s.analyzer.Store().Count(kind),
	}), nil, nil
}

func (s *Server) handleHistorySummary(_ context.Context, _ *sdk.CallToolRequest, _ EmptyInput) (*sdk.CallToolResult, any, error) {
	store := s.analyzer.Store()
	var kinds []historySummary
	for _, kind := range []fairness.EntityKind{fairness.Custodians, fairness.ArmedGuards} {
		summary := historySummary{Kind: kind, Records: store.Count(kind)}
		if latest := store.LatestTimestamp(kind); !latest.IsZero() {
			summary.LatestService = &latest
		}
		kinds = append(kinds, summary)
	}

	return s.result(struct {
		History []historySummary  `json:"history"`
		Cache   reportcache.Stats `json:"cache"`
	}{kinds, s.analyzer.CacheStats()}), nil, nil
}

// referenceTime falls back to the server clock only when the inactivity rule
// is off; with it on, the outcome must not depend on when the tool runs.
func (s *Server) referenceTime(raw string, excludeInactive bool) (time.Time, error) {
	if raw == "" {
		if excludeInactive {
			return time.Time{}, fmt.Errorf("%w: now is required when excluding inactive members", fairness.ErrInvalidInput)
		}
		return s.clock().UTC(), nil
	}
	t, err := snapshot.ParseTime(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid now %q: %w", raw, err)
	}
	return t, nil
}

func (s *Server) excludeInactive(override *bool) bool {
	if override != nil {
		return *override
	}
	return s.cfg.ExcludeInactive
}

func toResponse(res *analyzer.Result) reportResponse {
	return reportResponse{
		RunID:  res.RunID,
		Kind:   res.Kind,
		Cached: res.Cached,
		Report: res.Report,
	}
}
