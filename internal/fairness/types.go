package fairness

import (
	"time"

	"fairness-mcp/internal/stats"
)

// EntityKind labels the personnel pool a report was computed for.
type EntityKind string

const (
	// Custodians are unarmed escort staff ("custodios").
	Custodians EntityKind = "custodios"
	// ArmedGuards are armed escort staff ("armados").
	ArmedGuards EntityKind = "armados"
)

// AssignmentRecord is one observed service assignment.
type AssignmentRecord struct {
	// EntityID is the upstream identifier of the assignee, when the source can supply one.
	EntityID string `json:"entityId,omitempty"`
	// EntityName is the assignee name as typed in the source system.
	EntityName string `json:"entityName"`
	// Timestamp is when the service was assigned.
	Timestamp time.Time `json:"timestamp"`
	// ExcludedProvider marks records served by external providers; they never enter the analysis.
	ExcludedProvider bool `json:"excludedProvider,omitempty"`
}

// PoolMember is a registered, active entity eligible for assignment.
type PoolMember struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	HistoricalServiceCount int        `json:"historicalServiceCount"`
	Zone                   *string    `json:"zone,omitempty"`
	ScoreTotal             *float64   `json:"scoreTotal,omitempty"`
	LastServiceAt          *time.Time `json:"lastServiceAt,omitempty"`
}

// AssignmentCount aggregates the assignments of one distinct entity.
type AssignmentCount struct {
	Key            string `json:"key"`
	EntityID       string `json:"entityId,omitempty"`
	NormalizedName string `json:"normalizedName"`
	DisplayName    string `json:"displayName"` // first-seen raw form
	Count          int    `json:"count"`
	Matched        bool   `json:"matched"`
	PoolMemberID   string `json:"poolMemberId,omitempty"`
}

// Category buckets an entity by how far its assignment count sits from the mean.
type Category string

const (
	MuyFavorecido    Category = "MUY_FAVORECIDO"
	Favorecido       Category = "FAVORECIDO"
	Normal           Category = "NORMAL"
	Subfavorecido    Category = "SUBFAVORECIDO"
	MuySubfavorecido Category = "MUY_SUBFAVORECIDO"
)

// Categories lists every category from most to least favoured.
var Categories = []Category{MuyFavorecido, Favorecido, Normal, Subfavorecido, MuySubfavorecido}

// DeviationRecord is the per-entity Z-score classification.
type DeviationRecord struct {
	EntityID     string   `json:"entityId"`
	DisplayName  string   `json:"displayName"`
	Count        int      `json:"count"`
	ZScore       float64  `json:"zScore"`
	Category     Category `json:"category"`
	DeviationPct float64  `json:"deviationPct"`
}

// Severity of an alert.
type Severity string

const (
	SeverityAlta  Severity = "alta"
	SeverityMedia Severity = "media"
	SeverityBaja  Severity = "baja"
)

// AlertType identifies the rule that fired.
type AlertType string

const (
	AlertCoberturaBaja           AlertType = "COBERTURA_BAJA"
	AlertGiniAlto                AlertType = "GINI_ALTO"
	AlertMultiplesMuyFavorecidos AlertType = "MULTIPLES_MUY_FAVORECIDOS"
	AlertPoolSubutilizado        AlertType = "POOL_SUBUTILIZADO"
	AlertDatosInsuficientes      AlertType = "DATOS_INSUFICIENTES"
)

// Alert is a structured warning raised when a threshold is crossed.
type Alert struct {
	Type           AlertType `json:"type"`
	Severity       Severity  `json:"severity"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
}

// Interpretation holds the qualitative labels for the raw indices.
type Interpretation struct {
	Gini string `json:"gini"` // bajo, moderado, alto
	HHI  string `json:"hhi"`  // baja, moderada, alta
}

// IdleMember is a pool member that received no assignment in the period.
type IdleMember struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	HistoricalServiceCount int        `json:"historicalServiceCount"`
	Zone                   *string    `json:"zone,omitempty"`
	ScoreTotal             *float64   `json:"scoreTotal,omitempty"`
	LastServiceAt          *time.Time `json:"lastServiceAt,omitempty"`
}

// Report is the fairness analysis of one pool over one period. It is built
// once by Compute and never mutated afterwards.
type Report struct {
	Kind        EntityKind `json:"kind,omitempty"`
	GeneratedAt time.Time  `json:"generatedAt"`

	PoolSize                int `json:"poolSize"`
	ExcludedForInactivity   int `json:"excludedForInactivity"`
	ExcludedProviderRecords int `json:"excludedProviderRecords"`
	TotalAssignments        int `json:"totalAssignments"`
	MatchedPool             int `json:"matchedPool"`
	UnmatchedObservedCount  int `json:"unmatchedObservedCount"`

	CoveragePct float64 `json:"coveragePct"`

	Indices        stats.Indices  `json:"indices"`
	Interpretation Interpretation `json:"interpretation"`
	MeanCount      float64        `json:"meanCount"`
	StdDevCount    float64        `json:"stdDevCount"`
	MedianCount    float64        `json:"medianCount"`

	CategoryCounts    map[Category]int  `json:"categoryCounts"`
	TopDeviations     []DeviationRecord `json:"topDeviations"`
	UnmatchedPool     []IdleMember      `json:"unmatchedPool"`
	UnmatchedObserved []AssignmentCount `json:"unmatchedObserved"`
	AmbiguousNames    []string          `json:"ambiguousNames,omitempty"`

	Alerts           []Alert `json:"alerts"`
	InsufficientData bool    `json:"insufficientData"`

	counts     []AssignmentCount
	deviations []DeviationRecord
}

// AllDeviations returns the full, uncapped deviation set (NORMAL entities included).
func (r *Report) AllDeviations() []DeviationRecord {
	out := make([]DeviationRecord, len(r.deviations))
	copy(out, r.deviations)
	return out
}

// DistributionCounts returns the per-entity values that fed the indices:
// observed entities plus active pool members with a zero count.
func (r *Report) DistributionCounts() []AssignmentCount {
	out := make([]AssignmentCount, len(r.counts))
	copy(out, r.counts)
	return out
}

// ObservedCounts returns only the entities with at least one assignment in
// the period, matched and unmatched.
func (r *Report) ObservedCounts() []AssignmentCount {
	var out []AssignmentCount
	for _, c := range r.counts {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	return out
}
