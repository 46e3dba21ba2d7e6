package fairness

import (
	"sort"
	"time"
)

// LastSeenIndex answers when an entity was last assigned, looked up across
// the full assignment history rather than the analysed period. Reconcile
// ignores answers dated after its reference time, so an index should be
// built as of that time.
type LastSeenIndex interface {
	LastSeen(entityID, normalizedName string) (time.Time, bool)
}

// Reconciliation is the join between the registered pool and the observed counts.
type Reconciliation struct {
	ActivePool            []PoolMember
	ExcludedForInactivity int
	MatchedCount          int
	CoveragePct           float64
	Unmatched             []IdleMember
	UnmatchedObserved     []AssignmentCount
}

// poolMatcher resolves assignment records to pool members, preferring stable
// ids over names. Names are a lossy key: two people sharing a normalized name
// collapse onto the first member registered under it.
type poolMatcher struct {
	pool      []PoolMember
	byID      map[string]int
	byName    map[string]int
	ambiguous []string
}

func newPoolMatcher(pool []PoolMember) *poolMatcher {
	m := &poolMatcher{
		pool:   pool,
		byID:   make(map[string]int, len(pool)),
		byName: make(map[string]int, len(pool)),
	}

	flagged := make(map[string]bool)
	for i, member := range pool {
		m.byID[member.ID] = i

		key := Normalize(member.Name)
		if key == "" {
			continue
		}
		if _, taken := m.byName[key]; taken {
			if !flagged[key] {
				m.ambiguous = append(m.ambiguous, key)
				flagged[key] = true
			}
			continue
		}
		m.byName[key] = i
	}
	sort.Strings(m.ambiguous)
	return m
}

func (m *poolMatcher) resolve(entityID, normalizedName string) (int, bool) {
	if entityID != "" {
		if idx, ok := m.byID[entityID]; ok {
			return idx, true
		}
	}
	if normalizedName != "" {
		if idx, ok := m.byName[normalizedName]; ok {
			return idx, true
		}
	}
	return 0, false
}

// Aggregate counts the records per distinct entity in first-seen order. Every
// returned count is at least 1; excluded-provider records are skipped.
func Aggregate(records []AssignmentRecord, pool []PoolMember) []AssignmentCount {
	return aggregate(records, newPoolMatcher(pool))
}

func aggregate(records []AssignmentRecord, m *poolMatcher) []AssignmentCount {
	index := make(map[string]int)
	var counts []AssignmentCount

	for _, r := range records {
		if r.ExcludedProvider {
			continue
		}

		normalized := Normalize(r.EntityName)
		entry := AssignmentCount{
			EntityID:       r.EntityID,
			NormalizedName: normalized,
			DisplayName:    r.EntityName,
		}

		if idx, ok := m.resolve(r.EntityID, normalized); ok {
			member := m.pool[idx]
			entry.Key = "pool:" + member.ID
			entry.Matched = true
			entry.PoolMemberID = member.ID
			entry.EntityID = member.ID
			if entry.NormalizedName == "" {
				entry.NormalizedName = Normalize(member.Name)
			}
			if entry.DisplayName == "" {
				entry.DisplayName = member.Name
			}
		} else if r.EntityID != "" {
			entry.Key = "id:" + r.EntityID
		} else {
			entry.Key = "name:" + normalized
		}

		if pos, ok := index[entry.Key]; ok {
			counts[pos].Count++
			continue
		}
		entry.Count = 1
		index[entry.Key] = len(counts)
		counts = append(counts, entry)
	}

	return counts
}

// Reconcile joins the pool against the observed counts.
//
// With excludeInactive set, members with no assignment in the period whose
// latest known assignment is older than the inactivity window are dropped
// from the pool. Members never assigned at all (no known assignment and a zero
// historical count) are new hires and always stay. Members with assignments in
// the period are always active.
func Reconcile(pool []PoolMember, observed []AssignmentCount, now time.Time, excludeInactive bool, history LastSeenIndex, th Thresholds) Reconciliation {
	periodCounts := make(map[string]int)
	for _, c := range observed {
		if c.Matched {
			periodCounts[c.PoolMemberID] += c.Count
		}
	}

	rec := Reconciliation{}
	for _, member := range pool {
		if excludeInactive && periodCounts[member.ID] == 0 && isInactive(member, now, history, th.InactivityWindow) {
			rec.ExcludedForInactivity++
			continue
		}
		rec.ActivePool = append(rec.ActivePool, member)

		if periodCounts[member.ID] > 0 {
			rec.MatchedCount++
			continue
		}
		rec.Unmatched = append(rec.Unmatched, IdleMember{
			ID:                     member.ID,
			Name:                   member.Name,
			HistoricalServiceCount: member.HistoricalServiceCount,
			Zone:                   member.Zone,
			ScoreTotal:             member.ScoreTotal,
			LastServiceAt:          lastSeen(member, now, history),
		})
	}

	if len(rec.ActivePool) > 0 {
		rec.CoveragePct = 100 * float64(rec.MatchedCount) / float64(len(rec.ActivePool))
	}

	// Most experienced idle members first.
	sort.SliceStable(rec.Unmatched, func(i, j int) bool {
		if rec.Unmatched[i].HistoricalServiceCount != rec.Unmatched[j].HistoricalServiceCount {
			return rec.Unmatched[i].HistoricalServiceCount > rec.Unmatched[j].HistoricalServiceCount
		}
		return rec.Unmatched[i].Name < rec.Unmatched[j].Name
	})

	for _, c := range observed {
		if !c.Matched {
			rec.UnmatchedObserved = append(rec.UnmatchedObserved, c)
		}
	}
	sort.SliceStable(rec.UnmatchedObserved, func(i, j int) bool {
		return rec.UnmatchedObserved[i].Count > rec.UnmatchedObserved[j].Count
	})

	return rec
}

func isInactive(member PoolMember, now time.Time, history LastSeenIndex, window time.Duration) bool {
	last := lastSeen(member, now, history)
	if last == nil {
		return member.HistoricalServiceCount > 0
	}
	return now.Sub(*last) > window
}

// lastSeen merges the history lookup with the upstream-supplied last service
// date. Dates after now are unknown as of now and are ignored.
func lastSeen(member PoolMember, now time.Time, history LastSeenIndex) *time.Time {
	var latest *time.Time
	if member.LastServiceAt != nil && !member.LastServiceAt.IsZero() && !member.LastServiceAt.After(now) {
		t := *member.LastServiceAt
		latest = &t
	}
	if history != nil {
		if t, ok := history.LastSeen(member.ID, Normalize(member.Name)); ok && !t.After(now) {
			if latest == nil || t.After(*latest) {
				latest = &t
			}
		}
	}
	return latest
}
