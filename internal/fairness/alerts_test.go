package fairness

import (
	"strings"
	"testing"
)

func alertTypes(alerts []Alert) []AlertType {
	out := make([]AlertType, len(alerts))
	for i, a := range alerts {
		out[i] = a.Type
	}
	return out
}

func TestGenerateAlerts_AllRulesInOrder(t *testing.T) {
	alerts := GenerateAlerts(AlertInput{
		TotalAssignments:   120,
		PoolSize:           40,
		CoveragePct:        20,
		Gini:               0.55,
		StronglyFavored:    3,
		UnmatchedPoolCount: 32,
	}, DefaultThresholds())

	want := []AlertType{AlertCoberturaBaja, AlertGiniAlto, AlertMultiplesMuyFavorecidos, AlertPoolSubutilizado}
	got := alertTypes(alerts)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("at index %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if alerts[0].Severity != SeverityAlta {
		t.Errorf("low coverage must be alta, got %s", alerts[0].Severity)
	}
	if alerts[1].Severity != SeverityAlta {
		t.Errorf("gini above 0.40 must be alta, got %s", alerts[1].Severity)
	}
	if !strings.Contains(alerts[1].Description, "0.550") {
		t.Errorf("expected interpolated gini in description, got %q", alerts[1].Description)
	}
	for _, a := range alerts {
		if a.Recommendation == "" || a.Description == "" {
			t.Errorf("alert %s must carry description and recommendation", a.Type)
		}
	}
}

func TestGenerateAlerts_GiniSeverity(t *testing.T) {
	tests := []struct {
		gini     float64
		wantFire bool
		severity Severity
	}{
		{0.30, false, ""},
		{0.35, true, SeverityMedia},
		{0.40, true, SeverityMedia},
		{0.41, true, SeverityAlta},
	}

	for _, tt := range tests {
		alerts := GenerateAlerts(AlertInput{TotalAssignments: 50, PoolSize: 5, CoveragePct: 100, Gini: tt.gini}, DefaultThresholds())
		if !tt.wantFire {
			if len(alerts) != 0 {
				t.Errorf("gini %v: expected no alert, got %v", tt.gini, alertTypes(alerts))
			}
			continue
		}
		if len(alerts) != 1 || alerts[0].Type != AlertGiniAlto || alerts[0].Severity != tt.severity {
			t.Errorf("gini %v: expected GINI_ALTO/%s, got %+v", tt.gini, tt.severity, alerts)
		}
	}
}

func TestGenerateAlerts_CoverageNeedsLargePool(t *testing.T) {
	small := GenerateAlerts(AlertInput{TotalAssignments: 10, PoolSize: 10, CoveragePct: 10}, DefaultThresholds())
	for _, a := range small {
		if a.Type == AlertCoberturaBaja {
			t.Error("coverage alert must not fire for pools of 10 or fewer")
		}
	}
}

func TestGenerateAlerts_IdlePoolBoundary(t *testing.T) {
	half := GenerateAlerts(AlertInput{TotalAssignments: 10, PoolSize: 10, CoveragePct: 50, UnmatchedPoolCount: 5}, DefaultThresholds())
	if len(half) != 0 {
		t.Errorf("exactly half idle must not fire, got %v", alertTypes(half))
	}
	more := GenerateAlerts(AlertInput{TotalAssignments: 10, PoolSize: 10, CoveragePct: 40, UnmatchedPoolCount: 6}, DefaultThresholds())
	if len(more) != 1 || more[0].Type != AlertPoolSubutilizado {
		t.Errorf("expected POOL_SUBUTILIZADO, got %v", alertTypes(more))
	}
}

func TestGenerateAlerts_InsufficientDataIsExclusive(t *testing.T) {
	alerts := GenerateAlerts(AlertInput{
		TotalAssignments:   4,
		PoolSize:           40,
		CoveragePct:        5,
		Gini:               0.9,
		StronglyFavored:    4,
		UnmatchedPoolCount: 38,
	}, DefaultThresholds())

	if len(alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %v", alertTypes(alerts))
	}
	if alerts[0].Type != AlertDatosInsuficientes || alerts[0].Severity != SeverityBaja {
		t.Errorf("expected DATOS_INSUFICIENTES/baja, got %+v", alerts[0])
	}
}
