package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// PalmaUndefined marks a Palma ratio that cannot be computed (empty
// distribution or a bottom 40% holding nothing).
const PalmaUndefined = -1.0

// ErrInvalidCounts is returned when a distribution contains negative or
// non-finite values.
var ErrInvalidCounts = errors.New("invalid distribution counts")

// Indices holds the concentration and inequality measures of a distribution.
type Indices struct {
	Gini       float64 `json:"gini"`       // [0,1]
	Entropy    float64 `json:"entropy"`    // bits
	EntropyMax float64 `json:"entropyMax"` // log2 of entities with at least one count
	EntropyPct float64 `json:"entropyPct"` // [0,100]
	HHI        float64 `json:"hhi"`        // [10000/n, 10000]
	PalmaRatio float64 `json:"palmaRatio"` // top 10% share / bottom 40% share, or PalmaUndefined
}

// ValidateCounts rejects distributions the index formulas are not defined for.
func ValidateCounts(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: value at index %d is not finite", ErrInvalidCounts, i)
		}
		if v < 0 {
			return fmt.Errorf("%w: value at index %d is negative (%v)", ErrInvalidCounts, i, v)
		}
	}
	return nil
}

// ComputeIndices validates the distribution and computes every index from scratch.
func ComputeIndices(values []float64) (Indices, error) {
	if err := ValidateCounts(values); err != nil {
		return Indices{}, err
	}

	h, hMax, pct := ShannonEntropy(values)
	return Indices{
		Gini:       Gini(values),
		Entropy:    h,
		EntropyMax: hMax,
		EntropyPct: pct,
		HHI:        HHI(values),
		PalmaRatio: PalmaRatio(values),
	}, nil
}

// Gini computes the Gini coefficient using the sorted-rank form
// sum((2i - n + 1) * x_i) / (n * sum(x)) with 0-indexed ascending x.
func Gini(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	slices.Sort(sorted)

	total := 0.0
	weighted := 0.0
	for i, v := range sorted {
		total += v
		weighted += float64(2*i-n+1) * v
	}
	if total == 0 {
		return 0
	}

	g := weighted / (float64(n) * total)
	return math.Min(math.Max(g, 0), 1)
}

// ShannonEntropy returns the entropy in bits, the maximum entropy for the
// entities that hold at least one count, and the entropy as a percentage of
// that maximum. Zero-probability terms contribute nothing.
func ShannonEntropy(values []float64) (entropy, entropyMax, entropyPct float64) {
	total := sum(values)
	if total == 0 {
		return 0, 0, 0
	}

	active := 0
	for _, v := range values {
		if v <= 0 {
			continue
		}
		p := v / total
		entropy -= p * math.Log2(p)
		active++
	}

	if active > 0 {
		entropyMax = math.Log2(float64(active))
	}
	if entropyMax > 0 {
		entropyPct = math.Min(math.Max(100*entropy/entropyMax, 0), 100)
	}
	return entropy, entropyMax, entropyPct
}

// HHI computes the Herfindahl-Hirschman Index as the sum of squared
// percentage shares.
func HHI(values []float64) float64 {
	total := sum(values)
	if total == 0 {
		return 0
	}

	hhi := 0.0
	for _, v := range values {
		share := 100 * v / total
		hhi += share * share
	}
	return hhi
}

// PalmaRatio compares the share held by the top 10% of entities with the
// share held by the bottom 40%.
//
// Decile boundaries are measured in entity slots (n/10 and 4n/10). When a
// boundary falls inside an entity, that entity contributes the matching
// fraction of its count, so pools with fewer than ten entities still get a
// finite ratio. An all-equal distribution always yields 0.25.
func PalmaRatio(values []float64) float64 {
	n := len(values)
	if n == 0 || sum(values) == 0 {
		return PalmaUndefined
	}

	asc := make([]float64, n)
	copy(asc, values)
	slices.Sort(asc)

	desc := make([]float64, n)
	for i, v := range asc {
		desc[n-1-i] = v
	}

	bottom := fractionalSum(asc, float64(4*n)/10)
	top := fractionalSum(desc, float64(n)/10)
	if bottom == 0 {
		return PalmaUndefined
	}
	return top / bottom
}

// fractionalSum adds the first `slots` entities of an ordered slice, counting
// the boundary entity by its fractional weight.
func fractionalSum(ordered []float64, slots float64) float64 {
	acc := 0.0
	for _, v := range ordered {
		if slots <= 0 {
			break
		}
		w := math.Min(1, slots)
		acc += w * v
		slots -= w
	}
	return acc
}
