package fairness

import "fmt"

// AlertInput carries the figures the alert rules are evaluated against.
type AlertInput struct {
	TotalAssignments   int
	PoolSize           int
	CoveragePct        float64
	Gini               float64
	StronglyFavored    int // MUY_FAVORECIDO entities in the full deviation set
	UnmatchedPoolCount int
}

// GenerateAlerts evaluates the fixed rule set in order. Each rule fires
// independently, except data insufficiency which replaces every other alert.
func GenerateAlerts(in AlertInput, th Thresholds) []Alert {
	if in.TotalAssignments < th.MinAssignments {
		return []Alert{{
			Type:     AlertDatosInsuficientes,
			Severity: SeverityBaja,
			Description: fmt.Sprintf(
				"Solo se registraron %d asignaciones en el periodo; se requieren al menos %d para un análisis de equidad confiable.",
				in.TotalAssignments, th.MinAssignments),
			Recommendation: "Amplíe el periodo de análisis o espere a acumular más servicios antes de evaluar la distribución.",
		}}
	}

	alerts := []Alert{}

	// 1. Coverage
	if in.CoveragePct < th.LowCoveragePct && in.PoolSize > th.LowCoverageMinPoolSize {
		alerts = append(alerts, Alert{
			Type:     AlertCoberturaBaja,
			Severity: SeverityAlta,
			Description: fmt.Sprintf(
				"Solo el %.1f%% del pool activo (%d elementos) recibió al menos una asignación.",
				in.CoveragePct, in.PoolSize),
			Recommendation: "Revise los criterios de asignación y priorice al personal disponible sin servicios en el periodo.",
		})
	}

	// 2. Inequality
	if in.Gini > th.GiniAlert {
		severity := SeverityMedia
		if in.Gini > th.GiniAlertHigh {
			severity = SeverityAlta
		}
		alerts = append(alerts, Alert{
			Type:     AlertGiniAlto,
			Severity: severity,
			Description: fmt.Sprintf(
				"El coeficiente de Gini es %.3f, por encima del umbral de %.2f: la carga se concentra en pocos elementos.",
				in.Gini, th.GiniAlert),
			Recommendation: "Redistribuya servicios desde los elementos más favorecidos hacia los de menor carga.",
		})
	}

	// 3. Concentration on outliers
	if in.StronglyFavored >= th.MinStronglyFavored {
		alerts = append(alerts, Alert{
			Type:     AlertMultiplesMuyFavorecidos,
			Severity: SeverityMedia,
			Description: fmt.Sprintf(
				"%d elementos están clasificados como MUY_FAVORECIDO (más de %.0f desviaciones estándar sobre la media).",
				in.StronglyFavored, th.ZStronglyFavored),
			Recommendation: "Verifique si estos elementos reciben asignaciones por preferencia en lugar de por disponibilidad o zona.",
		})
	}

	// 4. Idle pool
	if float64(in.UnmatchedPoolCount) > float64(in.PoolSize)*th.IdlePoolFraction {
		alerts = append(alerts, Alert{
			Type:     AlertPoolSubutilizado,
			Severity: SeverityMedia,
			Description: fmt.Sprintf(
				"%d de %d elementos del pool no recibieron asignaciones en el periodo.",
				in.UnmatchedPoolCount, in.PoolSize),
			Recommendation: "Confirme la disponibilidad real del personal sin servicios y depure el registro de activos.",
		})
	}

	return alerts
}
