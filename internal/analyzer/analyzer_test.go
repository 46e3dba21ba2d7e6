package analyzer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fairness-mcp/internal/fairness"
	"fairness-mcp/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newAnalyzer(t *testing.T, dir string) *Analyzer {
	t.Helper()
	a, err := New(Config{HistoryDir: dir, Thresholds: fairness.DefaultThresholds(), CacheTTL: time.Minute})
	require.NoError(t, err)
	return a
}

func pool(prefix string, n int) []fairness.PoolMember {
	out := make([]fairness.PoolMember, n)
	for i := range out {
		out[i] = fairness.PoolMember{ID: fmt.Sprintf("%s-%02d", prefix, i+1), Name: fmt.Sprintf("%s Persona %02d", prefix, i+1), HistoricalServiceCount: 5}
	}
	return out
}

func spread(members []fairness.PoolMember, perMember int, start time.Time) []fairness.AssignmentRecord {
	var out []fairness.AssignmentRecord
	for i, m := range members {
		for j := 0; j < perMember; j++ {
			out = append(out, fairness.AssignmentRecord{
				EntityID:   m.ID,
				EntityName: m.Name,
				Timestamp:  start.Add(time.Duration(i*perMember+j) * time.Hour),
			})
		}
	}
	return out
}

func TestAnalyze_CachesIdenticalRequests(t *testing.T) {
	a := newAnalyzer(t, t.TempDir())
	members := pool("C", 6)
	req := Request{
		Kind:        fairness.Custodians,
		Pool:        members,
		Assignments: spread(members[:4], 3, refNow.AddDate(0, 0, -5)),
		Now:         refNow,
	}

	first, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 12, first.RecordsAdded)
	assert.Equal(t, 12, first.Report.TotalAssignments)
	assert.InDelta(t, 66.666, first.Report.CoveragePct, 0.01)

	second, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Zero(t, second.RecordsAdded)
	assert.Same(t, first.Report, second.Report)
	assert.NotEqual(t, first.RunID, second.RunID)

	assert.Equal(t, 1, a.CacheStats().Hits)
}

func TestAnalyze_InvalidInputIsNotRecorded(t *testing.T) {
	a := newAnalyzer(t, "")
	_, err := a.Analyze(context.Background(), Request{
		Kind:        fairness.ArmedGuards,
		Assignments: []fairness.AssignmentRecord{{EntityName: "Ana"}},
		Now:         refNow,
	})
	require.ErrorIs(t, err, fairness.ErrInvalidInput)
	assert.Zero(t, a.Store().Count(fairness.ArmedGuards))
}

func TestAnalyze_CancelledContext(t *testing.T) {
	a := newAnalyzer(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, Request{Kind: fairness.Custodians, Now: refNow})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_HistoryDrivesInactivity(t *testing.T) {
	dir := t.TempDir()
	members := pool("A", 4)

	// An earlier period saw A-02 recently and A-03 long ago.
	seed := newAnalyzer(t, dir)
	_, err := seed.Record(fairness.ArmedGuards, []fairness.AssignmentRecord{
		{EntityID: "A-02", EntityName: members[1].Name, Timestamp: refNow.AddDate(0, 0, -20)},
		{EntityID: "A-03", EntityName: members[2].Name, Timestamp: refNow.AddDate(0, 0, -200)},
	})
	require.NoError(t, err)

	// A fresh analyzer reloads the persisted history.
	a := newAnalyzer(t, dir)
	require.Equal(t, 2, a.Store().Count(fairness.ArmedGuards))

	res, err := a.Analyze(context.Background(), Request{
		Kind:            fairness.ArmedGuards,
		Pool:            members,
		Assignments:     spread(members[:1], 6, refNow.AddDate(0, 0, -3)),
		Now:             refNow,
		ExcludeInactive: true,
	})
	require.NoError(t, err)

	// A-03 is stale, A-04 has history but no known date; A-02 stays.
	assert.Equal(t, 2, res.Report.ExcludedForInactivity)
	assert.Equal(t, 2, res.Report.PoolSize)
	require.Len(t, res.Report.UnmatchedPool, 1)
	assert.Equal(t, "A-02", res.Report.UnmatchedPool[0].ID)
}

func TestAnalyzeSnapshot_RunsEverySection(t *testing.T) {
	a := newAnalyzer(t, "")
	custodians := pool("C", 5)
	armed := pool("A", 3)

	f := &snapshot.File{
		Now: refNow.Format(time.RFC3339),
		Sections: []snapshot.Section{
			snapshot.FromEngine(fairness.Custodians, custodians, spread(custodians, 2, refNow.AddDate(0, 0, -7))),
			snapshot.FromEngine(fairness.ArmedGuards, armed, spread(armed[:1], 2, refNow.AddDate(0, 0, -7))),
		},
	}

	results, err := a.AnalyzeSnapshot(context.Background(), f, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, fairness.Custodians, results[0].Kind)
	assert.False(t, results[0].Report.InsufficientData)
	assert.InDelta(t, 100.0, results[0].Report.CoveragePct, 1e-9)

	assert.Equal(t, fairness.ArmedGuards, results[1].Kind)
	assert.True(t, results[1].Report.InsufficientData)
	require.Len(t, results[1].Report.Alerts, 1)
	assert.Equal(t, fairness.AlertDatosInsuficientes, results[1].Report.Alerts[0].Type)
}

func TestAnalyzeSnapshot_Errors(t *testing.T) {
	a := newAnalyzer(t, "")

	_, err := a.AnalyzeSnapshot(context.Background(), &snapshot.File{Now: "mañana"}, nil)
	assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshot)

	bad := &snapshot.File{
		Now:      refNow.Format(time.RFC3339),
		Sections: []snapshot.Section{{Kind: "conductores"}},
	}
	_, err = a.AnalyzeSnapshot(context.Background(), bad, nil)
	assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshot)

	dup := &snapshot.File{
		Now: refNow.Format(time.RFC3339),
		Sections: []snapshot.Section{{
			Kind: "custodios",
			Pool: []snapshot.PoolMember{{ID: "x", Name: "Uno"}, {ID: "x", Name: "Dos"}},
		}},
	}
	_, err = a.AnalyzeSnapshot(context.Background(), dup, nil)
	assert.ErrorIs(t, err, fairness.ErrInvalidInput)
}

func TestNew_RejectsInvalidThresholds(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, fairness.ErrInvalidInput)
}

func TestAnalyze_HistoryAfterNowIsIgnored(t *testing.T) {
	a := newAnalyzer(t, "")
	members := pool("C", 2)
	stale := refNow.AddDate(0, 0, -200)
	members[1].LastServiceAt = &stale

	// A later period was recorded first.
	_, err := a.Record(fairness.Custodians, []fairness.AssignmentRecord{
		{EntityID: "C-02", EntityName: members[1].Name, Timestamp: refNow.AddDate(0, 3, 0)},
	})
	require.NoError(t, err)

	res, err := a.Analyze(context.Background(), Request{
		Kind:            fairness.Custodians,
		Pool:            members,
		Assignments:     spread(members[:1], 6, refNow.AddDate(0, 0, -3)),
		Now:             refNow,
		ExcludeInactive: true,
	})
	require.NoError(t, err)

	want, err := fairness.Compute(members, spread(members[:1], 6, refNow.AddDate(0, 0, -3)), fairness.Options{Now: refNow, ExcludeInactive: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Report.ExcludedForInactivity)
	assert.Equal(t, want.PoolSize, res.Report.PoolSize)
	assert.Equal(t, want.ExcludedForInactivity, res.Report.ExcludedForInactivity)
}

func TestAnalyze_NewHistoryInvalidatesCachedReport(t *testing.T) {
	a := newAnalyzer(t, "")
	members := pool("C", 3)
	req := Request{
		Kind:        fairness.Custodians,
		Pool:        members,
		Assignments: spread(members[:2], 3, refNow.AddDate(0, 0, -5)),
		Now:         refNow,
	}

	first, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Report.UnmatchedPool, 1)
	assert.Nil(t, first.Report.UnmatchedPool[0].LastServiceAt)

	last := refNow.AddDate(0, 0, -40)
	_, err = a.Record(fairness.Custodians, []fairness.AssignmentRecord{
		{EntityID: "C-03", EntityName: members[2].Name, Timestamp: last},
	})
	require.NoError(t, err)

	second, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	require.Len(t, second.Report.UnmatchedPool, 1)
	require.NotNil(t, second.Report.UnmatchedPool[0].LastServiceAt)
	assert.True(t, second.Report.UnmatchedPool[0].LastServiceAt.Equal(last))

	third, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, third.Cached)
}
