package fairness

import (
	"fmt"
	"time"

	"fairness-mcp/internal/stats"
)

// Options control a single report computation.
type Options struct {
	// Now anchors the inactivity window. It is never read from the clock.
	Now time.Time
	// ExcludeInactive drops idle members whose last assignment is older than the window.
	ExcludeInactive bool
	// History supplies last-assignment dates beyond the analysed period. Optional.
	History LastSeenIndex
	// Thresholds overrides DefaultThresholds when set.
	Thresholds *Thresholds
	// Kind labels the report.
	Kind EntityKind
}

// ComputeFairnessReport is Compute with default thresholds and no history index.
func ComputeFairnessReport(pool []PoolMember, assignments []AssignmentRecord, now time.Time, excludeInactive90d bool) (*Report, error) {
	return Compute(pool, assignments, Options{Now: now, ExcludeInactive: excludeInactive90d})
}

// Compute runs the full pipeline: validate, aggregate, reconcile, compute
// indices, classify deviations, raise alerts. It either returns a complete
// report or an error; with fewer assignments than the minimum it returns an
// insufficiency report with zeroed indices and no deviations.
func Compute(pool []PoolMember, assignments []AssignmentRecord, opts Options) (*Report, error) {
	th := DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if opts.ExcludeInactive && opts.Now.IsZero() {
		return nil, fmt.Errorf("%w: excluding inactive members requires an explicit reference time", ErrInvalidInput)
	}

	// 1. Validate inputs and drop external providers
	if err := validatePool(pool); err != nil {
		return nil, err
	}
	records := make([]AssignmentRecord, 0, len(assignments))
	excludedProviders := 0
	for _, a := range assignments {
		if a.ExcludedProvider {
			excludedProviders++
			continue
		}
		records = append(records, a)
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	// 2. Aggregate and reconcile
	matcher := newPoolMatcher(pool)
	observed := aggregate(records, matcher)
	rec := Reconcile(pool, observed, opts.Now, opts.ExcludeInactive, opts.History, th)

	counts := distribution(observed, rec.Unmatched)
	values := make([]int, len(counts))
	total := 0
	for i, c := range counts {
		values[i] = c.Count
		total += c.Count
	}

	report := &Report{
		Kind:                    opts.Kind,
		GeneratedAt:             opts.Now,
		PoolSize:                len(rec.ActivePool),
		ExcludedForInactivity:   rec.ExcludedForInactivity,
		ExcludedProviderRecords: excludedProviders,
		TotalAssignments:        total,
		MatchedPool:             rec.MatchedCount,
		UnmatchedObservedCount:  len(rec.UnmatchedObserved),
		CoveragePct:             rec.CoveragePct,
		CategoryCounts:          CountByCategory(nil),
		TopDeviations:           []DeviationRecord{},
		UnmatchedPool:           nonNil(rec.Unmatched),
		UnmatchedObserved:       nonNil(rec.UnmatchedObserved),
		AmbiguousNames:          matcher.ambiguous,
		counts:                  counts,
		deviations:              []DeviationRecord{},
	}

	// 3. Short-circuit on insufficient data
	if total < th.MinAssignments {
		report.InsufficientData = true
		report.Alerts = GenerateAlerts(AlertInput{TotalAssignments: total}, th)
		return report, nil
	}

	// 4. Distribution indices
	fv := stats.ToFloat(values)
	indices, err := stats.ComputeIndices(fv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	report.Indices = indices
	report.Interpretation = Interpretation{
		Gini: th.InterpretGini(indices.Gini),
		HHI:  th.InterpretHHI(indices.HHI),
	}
	report.MeanCount = stats.CalculateMean(fv)
	report.StdDevCount = stats.CalculateSampleStdDev(fv)
	report.MedianCount = stats.CalculateMedianDiscrete(values)

	// 5. Deviations
	report.deviations = ClassifyDeviations(counts, th)
	report.CategoryCounts = CountByCategory(report.deviations)
	report.TopDeviations = TopDeviations(report.deviations, th.TopDeviations)

	// 6. Alerts
	report.Alerts = GenerateAlerts(AlertInput{
		TotalAssignments:   total,
		PoolSize:           report.PoolSize,
		CoveragePct:        report.CoveragePct,
		Gini:               indices.Gini,
		StronglyFavored:    report.CategoryCounts[MuyFavorecido],
		UnmatchedPoolCount: len(report.UnmatchedPool),
	}, th)

	return report, nil
}

// distribution lists every entity that takes part in the analysis: observed
// entities in first-seen order, then idle active pool members with a zero count.
func distribution(observed []AssignmentCount, idle []IdleMember) []AssignmentCount {
	out := make([]AssignmentCount, 0, len(observed)+len(idle))
	out = append(out, observed...)
	for _, m := range idle {
		out = append(out, AssignmentCount{
			Key:            "pool:" + m.ID,
			EntityID:       m.ID,
			NormalizedName: Normalize(m.Name),
			DisplayName:    m.Name,
			Matched:        true,
			PoolMemberID:   m.ID,
		})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
