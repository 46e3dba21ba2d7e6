package reportcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fairness-mcp/internal/fairness"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// maxExtensions bounds how often a hit may push the expiration forward.
const maxExtensions = 5

// Cache memoises fairness reports by a digest of their inputs. Entries expire
// after the TTL; hits slide the expiration forward a bounded number of times.
type Cache struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group

	hits, misses int
}

type entry struct {
	report      *fairness.Report
	expiration  time.Time
	accessCount int
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

// New creates a cache. A non-positive ttl disables caching.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]*entry),
	}
}

// Key digests everything that determines a report's content.
func Key(kind fairness.EntityKind, pool []fairness.PoolMember, records []fairness.AssignmentRecord, opts fairness.Options) (string, error) {
	th := fairness.DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}

	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, part := range []any{kind, pool, records, opts.Now.UTC(), opts.ExcludeInactive, th, historyView(pool, records, opts)} {
		if err := enc.Encode(part); err != nil {
			return "", fmt.Errorf("failed to hash report inputs: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// historyView is the part of the history a report reads: the last known
// assignment, as of now, of every pool member idle in the period.
func historyView(pool []fairness.PoolMember, records []fairness.AssignmentRecord, opts fairness.Options) map[string]int64 {
	if opts.History == nil {
		return nil
	}
	assigned := make(map[string]bool)
	for _, c := range fairness.Aggregate(records, pool) {
		if c.Matched {
			assigned[c.PoolMemberID] = true
		}
	}

	view := make(map[string]int64)
	for _, m := range pool {
		if assigned[m.ID] {
			continue
		}
		if t, ok := opts.History.LastSeen(m.ID, fairness.Normalize(m.Name)); ok && !t.After(opts.Now) {
			view[m.ID] = t.UnixMicro()
		}
	}
	return view
}

// Get returns a cached report if present and not expired.
func (c *Cache) Get(key string) (*fairness.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		log.Debug().Str("key", short(key)).Msg("Report cache miss")
		return nil, false
	}

	now := c.clock()
	if now.After(e.expiration) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	if e.accessCount <= maxExtensions {
		e.expiration = now.Add(c.ttl)
		e.accessCount++
	}
	c.hits++
	log.Debug().Str("key", short(key)).Int("count", e.accessCount).Msg("Report cache hit")
	return e.report, true
}

// Put stores a report under key.
func (c *Cache) Put(key string, report *fairness.Report) {
	if c.ttl <= 0 || report == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		report:      report,
		expiration:  c.clock().Add(c.ttl),
		accessCount: 1,
	}
}

// GetOrCompute returns the cached report for key, or runs compute once for
// all concurrent callers asking for the same key and caches its result.
// The boolean reports whether the value came from the cache.
func (c *Cache) GetOrCompute(key string, compute func() (*fairness.Report, error)) (*fairness.Report, bool, error) {
	if c.ttl > 0 {
		if r, ok := c.Get(key); ok {
			return r, true, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		r, err := compute()
		if err != nil {
			return nil, err
		}
		c.Put(key, r)
		return r, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*fairness.Report), false, nil
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiration) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Stats reports current usage.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

func short(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
