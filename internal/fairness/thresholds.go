package fairness

import (
	"fmt"
	"time"
)

// Business policy constants. They are not derived from the data; tune them
// through Thresholds rather than in the formulas.
const (
	// MinAssignmentsForAnalysis is the smallest period volume that gets indices.
	MinAssignmentsForAnalysis = 5

	GiniLowThreshold      = 0.25
	GiniModerateThreshold = 0.40

	HHILowThreshold      = 1500.0
	HHIModerateThreshold = 2500.0

	ZScoreFavoredThreshold         = 1.0
	ZScoreStronglyFavoredThreshold = 2.0

	InactivityWindow   = 90 * 24 * time.Hour
	TopDeviationsLimit = 15

	LowCoveragePct            = 30.0
	LowCoverageMinPoolSize    = 10
	GiniAlertThreshold        = 0.30
	GiniAlertHighThreshold    = 0.40
	MinStronglyFavoredToAlert = 2
	IdlePoolFraction          = 0.5
)

// Thresholds collects every tunable limit used by the classifier, the
// interpretation labels and the alert rules.
type Thresholds struct {
	MinAssignments int `yaml:"min_assignments" json:"minAssignments"`

	GiniLow      float64 `yaml:"gini_low" json:"giniLow"`
	GiniModerate float64 `yaml:"gini_moderate" json:"giniModerate"`
	HHILow       float64 `yaml:"hhi_low" json:"hhiLow"`
	HHIModerate  float64 `yaml:"hhi_moderate" json:"hhiModerate"`

	ZFavored         float64 `yaml:"z_favored" json:"zFavored"`
	ZStronglyFavored float64 `yaml:"z_strongly_favored" json:"zStronglyFavored"`

	InactivityWindow time.Duration `yaml:"inactivity_window" json:"inactivityWindow"`
	TopDeviations    int           `yaml:"top_deviations" json:"topDeviations"`

	LowCoveragePct         float64 `yaml:"low_coverage_pct" json:"lowCoveragePct"`
	LowCoverageMinPoolSize int     `yaml:"low_coverage_min_pool_size" json:"lowCoverageMinPoolSize"`
	GiniAlert              float64 `yaml:"gini_alert" json:"giniAlert"`
	GiniAlertHigh          float64 `yaml:"gini_alert_high" json:"giniAlertHigh"`
	MinStronglyFavored     int     `yaml:"min_strongly_favored" json:"minStronglyFavored"`
	IdlePoolFraction       float64 `yaml:"idle_pool_fraction" json:"idlePoolFraction"`
}

// DefaultThresholds returns the production policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAssignments:         MinAssignmentsForAnalysis,
		GiniLow:                GiniLowThreshold,
		GiniModerate:           GiniModerateThreshold,
		HHILow:                 HHILowThreshold,
		HHIModerate:            HHIModerateThreshold,
		ZFavored:               ZScoreFavoredThreshold,
		ZStronglyFavored:       ZScoreStronglyFavoredThreshold,
		InactivityWindow:       InactivityWindow,
		TopDeviations:          TopDeviationsLimit,
		LowCoveragePct:         LowCoveragePct,
		LowCoverageMinPoolSize: LowCoverageMinPoolSize,
		GiniAlert:              GiniAlertThreshold,
		GiniAlertHigh:          GiniAlertHighThreshold,
		MinStronglyFavored:     MinStronglyFavoredToAlert,
		IdlePoolFraction:       IdlePoolFraction,
	}
}

// Validate checks that the limits are internally consistent.
func (t Thresholds) Validate() error {
	switch {
	case t.MinAssignments < 1:
		return fmt.Errorf("%w: min_assignments must be at least 1", ErrInvalidInput)
	case t.GiniLow < 0 || t.GiniLow > t.GiniModerate || t.GiniModerate > 1:
		return fmt.Errorf("%w: gini thresholds must satisfy 0 <= low <= moderate <= 1", ErrInvalidInput)
	case t.HHILow < 0 || t.HHILow > t.HHIModerate || t.HHIModerate > 10000:
		return fmt.Errorf("%w: hhi thresholds must satisfy 0 <= low <= moderate <= 10000", ErrInvalidInput)
	case t.ZFavored <= 0 || t.ZFavored > t.ZStronglyFavored:
		return fmt.Errorf("%w: z-score thresholds must satisfy 0 < favored <= strongly_favored", ErrInvalidInput)
	case t.InactivityWindow <= 0:
		return fmt.Errorf("%w: inactivity_window must be positive", ErrInvalidInput)
	case t.TopDeviations < 1:
		return fmt.Errorf("%w: top_deviations must be at least 1", ErrInvalidInput)
	case t.GiniAlert > t.GiniAlertHigh:
		return fmt.Errorf("%w: gini_alert must not exceed gini_alert_high", ErrInvalidInput)
	case t.IdlePoolFraction < 0 || t.IdlePoolFraction > 1:
		return fmt.Errorf("%w: idle_pool_fraction must be within [0,1]", ErrInvalidInput)
	}
	return nil
}

// InterpretGini labels a Gini coefficient.
func (t Thresholds) InterpretGini(gini float64) string {
	switch {
	case gini < t.GiniLow:
		return "bajo"
	case gini < t.GiniModerate:
		return "moderado"
	default:
		return "alto"
	}
}

// InterpretHHI labels a Herfindahl-Hirschman Index.
func (t Thresholds) InterpretHHI(hhi float64) string {
	switch {
	case hhi < t.HHILow:
		return "baja"
	case hhi < t.HHIModerate:
		return "moderada"
	default:
		return "alta"
	}
}

// Classify buckets a Z-score. Boundaries belong to the less extreme bucket:
// z == 1 is NORMAL and z == 2 is FAVORECIDO.
func (t Thresholds) Classify(z float64) Category {
	switch {
	case z > t.ZStronglyFavored:
		return MuyFavorecido
	case z > t.ZFavored:
		return Favorecido
	case z >= -t.ZFavored:
		return Normal
	case z >= -t.ZStronglyFavored:
		return Subfavorecido
	default:
		return MuySubfavorecido
	}
}
