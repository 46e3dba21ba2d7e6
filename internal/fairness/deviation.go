package fairness

import (
	"math"
	"sort"

	"fairness-mcp/internal/stats"
)

// ClassifyDeviations scores every entity against the distribution mean using
// the sample standard deviation. The returned slice is complete and keeps the
// input order; use TopDeviations for presentation.
func ClassifyDeviations(counts []AssignmentCount, th Thresholds) []DeviationRecord {
	if len(counts) == 0 {
		return []DeviationRecord{}
	}

	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c.Count)
	}
	mean := stats.CalculateMean(values)
	stdDev := stats.CalculateSampleStdDev(values)

	records := make([]DeviationRecord, len(counts))
	for i, c := range counts {
		z := 0.0
		if stdDev != 0 {
			z = (float64(c.Count) - mean) / stdDev
		}
		pct := 0.0
		if mean != 0 {
			pct = 100 * (float64(c.Count) - mean) / mean
		}

		records[i] = DeviationRecord{
			EntityID:     entityRef(c),
			DisplayName:  c.DisplayName,
			Count:        c.Count,
			ZScore:       z,
			Category:     th.Classify(z),
			DeviationPct: pct,
		}
	}
	return records
}

// TopDeviations keeps the non-NORMAL records, most extreme first, capped at limit.
func TopDeviations(all []DeviationRecord, limit int) []DeviationRecord {
	out := make([]DeviationRecord, 0, len(all))
	for _, d := range all {
		if d.Category != Normal {
			out = append(out, d)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].ZScore), math.Abs(out[j].ZScore)
		if ai != aj {
			return ai > aj
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].DisplayName < out[j].DisplayName
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CountByCategory tallies the full deviation set; every category is present.
func CountByCategory(all []DeviationRecord) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, d := range all {
		counts[d.Category]++
	}
	return counts
}

func entityRef(c AssignmentCount) string {
	switch {
	case c.PoolMemberID != "":
		return c.PoolMemberID
	case c.EntityID != "":
		return c.EntityID
	default:
		return c.Key
	}
}
