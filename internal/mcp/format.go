package mcp

import (
	"encoding/json"

	"fairness-mcp/internal/fairness"
	"fairness-mcp/internal/visuals"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// result renders data as indented JSON text, followed by any charts.
func (s *Server) result(data any, charts ...string) *sdk.CallToolResult {
	content := []sdk.Content{&sdk.TextContent{Text: formatResult(data)}}
	for _, c := range charts {
		if c != "" {
			content = append(content, &sdk.TextContent{Text: c})
		}
	}
	return &sdk.CallToolResult{Content: content}
}

func (s *Server) charts(report *fairness.Report) []string {
	if !s.cfg.EnableMermaidCharts {
		return nil
	}
	return []string{
		visuals.GenerateDistributionChart(report),
		visuals.GenerateDeviationChart(report.TopDeviations),
		visuals.GenerateCategoryPie(report),
	}
}

func formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}
