package reportcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fairness-mcp/internal/fairness"
)

var refNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: refNow}
	c := New(ttl)
	c.clock = clock.now
	return c, clock
}

func inputs() ([]fairness.PoolMember, []fairness.AssignmentRecord) {
	pool := []fairness.PoolMember{{ID: "c-1", Name: "Ana Ruiz", HistoricalServiceCount: 4}}
	records := []fairness.AssignmentRecord{{EntityName: "Ana Ruiz", Timestamp: refNow.Add(-time.Hour)}}
	return pool, records
}

func TestKey_SensitiveToEveryInput(t *testing.T) {
	pool, records := inputs()
	base, err := Key(fairness.Custodians, pool, records, fairness.Options{Now: refNow})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}

	same, _ := Key(fairness.Custodians, pool, records, fairness.Options{Now: refNow})
	if same != base {
		t.Error("Expected identical inputs to produce identical keys")
	}

	th := fairness.DefaultThresholds()
	th.MinAssignments = 10
	variants := map[string]func() (string, error){
		"kind": func() (string, error) {
			return Key(fairness.ArmedGuards, pool, records, fairness.Options{Now: refNow})
		},
		"now": func() (string, error) {
			return Key(fairness.Custodians, pool, records, fairness.Options{Now: refNow.Add(time.Second)})
		},
		"excludeInactive": func() (string, error) {
			return Key(fairness.Custodians, pool, records, fairness.Options{Now: refNow, ExcludeInactive: true})
		},
		"pool": func() (string, error) {
			return Key(fairness.Custodians, append(pool, fairness.PoolMember{ID: "c-2", Name: "Beto"}), records, fairness.Options{Now: refNow})
		},
		"records": func() (string, error) {
			return Key(fairness.Custodians, pool, records[:0], fairness.Options{Now: refNow})
		},
		"thresholds": func() (string, error) {
			return Key(fairness.Custodians, pool, records, fairness.Options{Now: refNow, Thresholds: &th})
		},
	}
	for name, fn := range variants {
		k, err := fn()
		if err != nil {
			t.Fatalf("%s: Key failed: %v", name, err)
		}
		if k == base {
			t.Errorf("Expected %s to change the key", name)
		}
	}
}

type lastSeenMap map[string]time.Time

func (m lastSeenMap) LastSeen(entityID, _ string) (time.Time, bool) {
	t, ok := m[entityID]
	return t, ok
}

func TestKey_TracksHistoryOfIdleMembers(t *testing.T) {
	pool := []fairness.PoolMember{
		{ID: "c-1", Name: "Ana Ruiz", HistoricalServiceCount: 4},
		{ID: "c-2", Name: "Mario Rojas", HistoricalServiceCount: 9},
	}
	records := []fairness.AssignmentRecord{{EntityID: "c-1", EntityName: "Ana Ruiz", Timestamp: refNow.Add(-time.Hour)}}
	key := func(h lastSeenMap) string {
		k, err := Key(fairness.Custodians, pool, records, fairness.Options{Now: refNow, History: h})
		if err != nil {
			t.Fatalf("Key failed: %v", err)
		}
		return k
	}

	empty := key(lastSeenMap{})
	if key(lastSeenMap{"c-2": refNow.AddDate(0, 0, -30)}) == empty {
		t.Error("Expected a new last assignment of an idle member to change the key")
	}
	if key(lastSeenMap{"c-1": refNow.AddDate(0, 0, -30)}) != empty {
		t.Error("Expected history of members assigned in the period to leave the key unchanged")
	}
	if key(lastSeenMap{"c-2": refNow.AddDate(0, 1, 0)}) != empty {
		t.Error("Expected history after the reference time to leave the key unchanged")
	}
}

func TestCache_ExpirationAndSliding(t *testing.T) {
	c, clock := newTestCache(10 * time.Minute)
	report := &fairness.Report{TotalAssignments: 7}
	c.Put("k", report)

	clock.advance(9 * time.Minute)
	if got, ok := c.Get("k"); !ok || got != report {
		t.Fatal("Expected a hit before expiration")
	}

	// The hit slid the expiration to 9m + 10m.
	clock.advance(9 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Error("Expected the sliding window to keep the entry alive")
	}

	clock.advance(11 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected the entry to expire")
	}
	if s := c.Stats(); s.Entries != 0 || s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Unexpected stats %+v", s)
	}
}

func TestCache_SlidingIsBounded(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Put("k", &fairness.Report{})

	for i := 0; i < maxExtensions+3; i++ {
		clock.advance(50 * time.Second)
		c.Get("k")
	}
	clock.advance(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected the entry to expire once extensions are exhausted")
	}
}

func TestCache_Purge(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Put("a", &fairness.Report{})
	clock.advance(30 * time.Second)
	c.Put("b", &fairness.Report{})
	clock.advance(45 * time.Second)

	if removed := c.Purge(); removed != 1 {
		t.Errorf("Expected 1 purged entry, got %d", removed)
	}
	if c.Stats().Entries != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", c.Stats().Entries)
	}
}

func TestCache_GetOrCompute(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	var calls atomic.Int32
	compute := func() (*fairness.Report, error) {
		calls.Add(1)
		return &fairness.Report{TotalAssignments: 5}, nil
	}

	first, cached, err := c.GetOrCompute("k", compute)
	if err != nil || cached || first.TotalAssignments != 5 {
		t.Fatalf("Unexpected first result: %+v cached=%v err=%v", first, cached, err)
	}
	second, cached, err := c.GetOrCompute("k", compute)
	if err != nil || !cached || second != first {
		t.Errorf("Expected the cached report, got cached=%v err=%v", cached, err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single computation, got %d", calls.Load())
	}

	boom := errors.New("boom")
	if _, _, err := c.GetOrCompute("bad", func() (*fairness.Report, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("Expected compute error to propagate, got %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("Failed computations must not be cached")
	}
}

func TestCache_GetOrComputeConcurrent(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCompute("k", func() (*fairness.Report, error) {
				calls.Add(1)
				<-release
				return &fairness.Report{}, nil
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() < 1 || calls.Load() > 8 {
		t.Errorf("Unexpected computation count %d", calls.Load())
	}
	if _, ok := c.Get("k"); !ok {
		t.Error("Expected the computed report to be cached")
	}
}

func TestCache_Disabled(t *testing.T) {
	c := New(0)
	var calls int
	for i := 0; i < 2; i++ {
		if _, cached, _ := c.GetOrCompute("k", func() (*fairness.Report, error) {
			calls++
			return &fairness.Report{}, nil
		}); cached {
			t.Error("Disabled cache must never report a hit")
		}
	}
	if calls != 2 {
		t.Errorf("Expected 2 computations with caching disabled, got %d", calls)
	}
}
