package analyzer

import (
	"context"
	"fmt"
	"time"

	"fairness-mcp/internal/assignments"
	"fairness-mcp/internal/fairness"
	"fairness-mcp/internal/logging"
	"fairness-mcp/internal/reportcache"
	"fairness-mcp/internal/snapshot"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config wires the analyzer to its collaborators.
type Config struct {
	// HistoryDir persists the assignment history when set.
	HistoryDir string
	Thresholds fairness.Thresholds
	CacheTTL   time.Duration
}

// Request is one report computation.
type Request struct {
	Kind            fairness.EntityKind
	Pool            []fairness.PoolMember
	Assignments     []fairness.AssignmentRecord
	Now             time.Time
	ExcludeInactive bool
}

// Result carries a report plus bookkeeping about how it was produced.
type Result struct {
	RunID        string              `json:"runId"`
	Kind         fairness.EntityKind `json:"kind"`
	Cached       bool                `json:"cached"`
	RecordsAdded int                 `json:"recordsAdded"`
	Report       *fairness.Report    `json:"report"`
}

// Analyzer runs fairness reports against the history store and report cache.
type Analyzer struct {
	cfg   Config
	store *assignments.Store
	cache *reportcache.Cache
	log   zerolog.Logger
}

// New creates an analyzer and loads any persisted history.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}

	a := &Analyzer{
		cfg:   cfg,
		store: assignments.NewStore(),
		cache: reportcache.New(cfg.CacheTTL),
		log:   logging.Component("analyzer"),
	}

	if cfg.HistoryDir != "" {
		for _, kind := range []fairness.EntityKind{fairness.Custodians, fairness.ArmedGuards} {
			if err := a.store.Load(cfg.HistoryDir, kind); err != nil {
				return nil, fmt.Errorf("failed to load %s history: %w", kind, err)
			}
		}
	}
	return a, nil
}

// Thresholds returns the thresholds in effect.
func (a *Analyzer) Thresholds() fairness.Thresholds {
	return a.cfg.Thresholds
}

// Store exposes the assignment history.
func (a *Analyzer) Store() *assignments.Store {
	return a.store
}

// CacheStats reports report cache usage.
func (a *Analyzer) CacheStats() reportcache.Stats {
	return a.cache.Stats()
}

// Record merges assignments into the history without computing a report.
func (a *Analyzer) Record(kind fairness.EntityKind, records []fairness.AssignmentRecord) (int, error) {
	if err := fairness.ValidateRecords(records); err != nil {
		return 0, err
	}
	added := a.store.Append(kind, assignments.FromAssignments(records))
	if added > 0 && a.cfg.HistoryDir != "" {
		if err := a.store.Save(a.cfg.HistoryDir, kind); err != nil {
			return added, err
		}
	}
	return added, nil
}

// Analyze computes (or recalls) the report, then merges the request's
// assignments into the history.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := a.log.With().Str("run", runID).Str("kind", string(req.Kind)).Logger()

	th := a.cfg.Thresholds
	opts := fairness.Options{
		Now:             req.Now,
		ExcludeInactive: req.ExcludeInactive,
		History:         a.store.LastSeen(req.Kind, req.Now),
		Thresholds:      &th,
		Kind:            req.Kind,
	}

	key, err := reportcache.Key(req.Kind, req.Pool, req.Assignments, opts)
	if err != nil {
		return nil, err
	}
	report, cached, err := a.cache.GetOrCompute(key, func() (*fairness.Report, error) {
		return fairness.Compute(req.Pool, req.Assignments, opts)
	})
	if err != nil {
		return nil, err
	}

	// Only validated input reaches the history.
	added, err := a.Record(req.Kind, req.Assignments)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to persist assignment history")
	}

	logger.Info().
		Bool("cached", cached).
		Int("pool", report.PoolSize).
		Int("assignments", report.TotalAssignments).
		Float64("gini", report.Indices.Gini).
		Int("alerts", len(report.Alerts)).
		Msg("Fairness report ready")

	return &Result{
		RunID:        runID,
		Kind:         req.Kind,
		Cached:       cached,
		RecordsAdded: added,
		Report:       report,
	}, nil
}

// AnalyzeSnapshot computes one report per section concurrently. Results keep
// the section order; the first failure cancels the rest.
func (a *Analyzer) AnalyzeSnapshot(ctx context.Context, f *snapshot.File, excludeInactive *bool) ([]*Result, error) {
	now, err := f.ReferenceTime()
	if err != nil {
		return nil, err
	}
	exclude := f.ExcludeInactive
	if excludeInactive != nil {
		exclude = *excludeInactive
	}

	requests := make([]Request, len(f.Sections))
	for i, s := range f.Sections {
		kind, pool, records, err := snapshot.MapSection(s)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		requests[i] = Request{Kind: kind, Pool: pool, Assignments: records, Now: now, ExcludeInactive: exclude}
	}

	results := make([]*Result, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		g.Go(func() error {
			res, err := a.Analyze(gctx, req)
			if err != nil {
				return fmt.Errorf("section %d (%s): %w", i, req.Kind, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
