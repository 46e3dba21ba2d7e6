package visuals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fairness-mcp/internal/fairness"
)

// chartLimit caps the number of bars so the chart stays readable in a text response.
const chartLimit = 20

// GenerateDistributionChart creates a Mermaid xychart-beta with assignments per
// entity (busiest first) and the mean as a reference line.
func GenerateDistributionChart(report *fairness.Report) string {
	if report == nil || report.InsufficientData {
		return ""
	}
	counts := report.DistributionCounts()
	if len(counts) == 0 {
		return ""
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > chartLimit {
		counts = counts[:chartLimit]
	}

	var labels, values, means []string
	maxVal := 0
	for _, c := range counts {
		labels = append(labels, quote(c.DisplayName))
		values = append(values, fmt.Sprintf("%d", c.Count))
		means = append(means, fmt.Sprintf("%.1f", report.MeanCount))
		if c.Count > maxVal {
			maxVal = c.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Asignaciones por %s (Top %d)\"\n", kindLabel(report.Kind), len(counts)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Servicios\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(means, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateDeviationChart creates a Mermaid bar chart of z-scores for the top deviations.
func GenerateDeviationChart(deviations []fairness.DeviationRecord) string {
	if len(deviations) == 0 {
		return ""
	}

	limit := len(deviations)
	if limit > chartLimit {
		limit = chartLimit
	}

	var labels, values []string
	minZ, maxZ := 0.0, 0.0
	for _, d := range deviations[:limit] {
		labels = append(labels, quote(d.DisplayName))
		values = append(values, fmt.Sprintf("%.2f", d.ZScore))
		minZ = math.Min(minZ, d.ZScore)
		maxZ = math.Max(maxZ, d.ZScore)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Desviacion (Z-score)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Z\" %d --> %d\n", int(math.Floor(minZ))-1, int(math.Ceil(maxZ))+1))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateCategoryPie creates a Mermaid pie chart of entities per deviation category.
// Empty categories are omitted.
func GenerateCategoryPie(report *fairness.Report) string {
	if report == nil || report.InsufficientData {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title \"Distribucion por categoria\"\n")
	slices := 0
	for _, cat := range fairness.Categories {
		n := report.CategoryCounts[cat]
		if n == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s : %d\n", quote(string(cat)), n))
		slices++
	}
	if slices == 0 {
		return ""
	}
	sb.WriteString("```")
	return sb.String()
}

func kindLabel(kind fairness.EntityKind) string {
	if kind == "" {
		return "entidad"
	}
	return string(kind)
}

func quote(s string) string {
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(s, "\"", "'"))
}
