package engine

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"fairness-mcp/internal/assignments"
	"fairness-mcp/internal/fairness"
	"fairness-mcp/internal/snapshot"
)

// GeneratorConfig drives synthetic snapshot generation.
type GeneratorConfig struct {
	Scenario string // equitable, concentrated, sparse, idle
	PoolSize int
	Services int
	Days     int
	Seed     int64
	Now      time.Time
}

// Output is a generated snapshot plus the prior-period history that goes with it.
type Output struct {
	Snapshot *snapshot.File
	History  map[fairness.EntityKind][]fairness.AssignmentRecord
}

var (
	firstNames = []string{"José", "María", "Andrés", "Lucía", "Raúl", "Inés", "Martín", "Sofía", "Héctor", "Ángela", "Julián", "Mónica", "Iván", "Verónica", "Tomás", "Begoña"}
	lastNames  = []string{"Pérez", "Gómez", "Núñez", "Ramírez", "Díaz", "López", "Fernández", "Suárez", "Ortíz", "Sánchez", "Castro", "Muñoz"}
	zones      = []string{"Norte", "Sur", "Centro", "Bajío", "Occidente"}
)

// Generate builds a snapshot with one section per entity kind.
func Generate(cfg GeneratorConfig) Output {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	if cfg.Days <= 0 {
		cfg.Days = 30
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	out := Output{
		Snapshot: &snapshot.File{
			Now:             cfg.Now.Format(time.RFC3339),
			ExcludeInactive: cfg.Scenario == "idle",
		},
		History: make(map[fairness.EntityKind][]fairness.AssignmentRecord),
	}

	for _, kind := range []fairness.EntityKind{fairness.Custodians, fairness.ArmedGuards} {
		size := cfg.PoolSize
		services := cfg.Services
		if kind == fairness.ArmedGuards {
			size = max(1, size/3)
			services = max(1, services/3)
		}

		pool := generatePool(rng, kind, size)
		records := generateAssignments(rng, cfg, pool, services)
		if cfg.Scenario == "idle" {
			out.History[kind] = generateHistory(rng, cfg.Now, pool, records)
		}
		out.Snapshot.Sections = append(out.Snapshot.Sections, snapshot.FromEngine(kind, pool, records))
	}
	return out
}

func generatePool(rng *rand.Rand, kind fairness.EntityKind, size int) []fairness.PoolMember {
	prefix := "C"
	if kind == fairness.ArmedGuards {
		prefix = "A"
	}

	pool := make([]fairness.PoolMember, size)
	for i := range pool {
		zone := zones[rng.Intn(len(zones))]
		score := math.Round(rng.Float64()*1000) / 10
		pool[i] = fairness.PoolMember{
			ID:                     fmt.Sprintf("%s-%04d", prefix, i+1),
			Name:                   fmt.Sprintf("%s %s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))], lastNames[rng.Intn(len(lastNames))]),
			HistoricalServiceCount: rng.Intn(200),
			Zone:                   &zone,
			ScoreTotal:             &score,
		}
	}
	return pool
}

// weights returns the relative chance of each member being assigned.
func weights(rng *rand.Rand, scenario string, n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		switch scenario {
		case "concentrated":
			w[i] = weibullSample(rng, 0.6, 1.0)
		case "idle":
			if i%2 == 1 {
				continue
			}
			w[i] = 1
		default:
			w[i] = 0.8 + rng.Float64()*0.4
		}
	}
	return w
}

func generateAssignments(rng *rand.Rand, cfg GeneratorConfig, pool []fairness.PoolMember, services int) []fairness.AssignmentRecord {
	if cfg.Scenario == "sparse" {
		services = min(services, fairness.MinAssignmentsForAnalysis-2)
	}

	w := weights(rng, cfg.Scenario, len(pool))
	total := 0.0
	for _, v := range w {
		total += v
	}

	window := time.Duration(cfg.Days) * 24 * time.Hour
	records := make([]fairness.AssignmentRecord, 0, services)
	for i := 0; i < services; i++ {
		ts := cfg.Now.Add(-time.Duration(rng.Int63n(int64(window)))).Truncate(time.Minute)

		switch r := rng.Float64(); {
		case r < 0.04:
			records = append(records, fairness.AssignmentRecord{EntityName: "Proveedor Externo SA", Timestamp: ts, ExcludedProvider: true})
			continue
		case r < 0.06:
			records = append(records, fairness.AssignmentRecord{EntityName: "Apoyo Eventual " + lastNames[rng.Intn(len(lastNames))], Timestamp: ts})
			continue
		}

		if total == 0 || len(pool) == 0 {
			continue
		}
		m := pool[pick(rng, w, total)]
		rec := fairness.AssignmentRecord{EntityName: typed(rng, m.Name), Timestamp: ts}
		if rng.Float64() < 0.5 {
			rec.EntityID = m.ID
		}
		records = append(records, rec)
	}
	return records
}

// generateHistory places earlier assignments for members idle in the period:
// half of them recently, the other half beyond the inactivity window.
func generateHistory(rng *rand.Rand, now time.Time, pool []fairness.PoolMember, period []fairness.AssignmentRecord) []fairness.AssignmentRecord {
	seen := make(map[string]bool)
	for _, r := range period {
		seen[fairness.Normalize(r.EntityName)] = true
	}

	var history []fairness.AssignmentRecord
	idle := 0
	for _, m := range pool {
		if seen[fairness.Normalize(m.Name)] {
			continue
		}
		daysAgo := 10 + rng.Intn(60)
		if idle%2 == 1 {
			daysAgo = 120 + rng.Intn(180)
		}
		idle++
		history = append(history, fairness.AssignmentRecord{
			EntityID:   m.ID,
			EntityName: m.Name,
			Timestamp:  now.AddDate(0, 0, -daysAgo).Truncate(time.Hour),
		})
	}
	return history
}

func pick(rng *rand.Rand, w []float64, total float64) int {
	x := rng.Float64() * total
	for i, v := range w {
		if x < v {
			return i
		}
		x -= v
	}
	return len(w) - 1
}

// typed mimics how operators type names: sometimes upper case, sometimes without accents.
func typed(rng *rand.Rand, name string) string {
	switch rng.Intn(4) {
	case 0:
		return strings.ToUpper(name)
	case 1:
		return strings.ToLower(name)
	case 2:
		return fairness.Normalize(name)
	}
	return name
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the snapshot file.
func Save(path string, out Output) error {
	return snapshot.WriteFile(path, out.Snapshot)
}

// SaveHistory persists the generated history in the store's JSONL layout.
func SaveHistory(dir string, out Output) error {
	store := assignments.NewStore()
	for kind, records := range out.History {
		store.Append(kind, assignments.FromAssignments(records))
		if err := store.Save(dir, kind); err != nil {
			return fmt.Errorf("failed to save %s history: %w", kind, err)
		}
	}
	return nil
}
