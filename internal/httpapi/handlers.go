package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"fairness-mcp/internal/fairness"
	"fairness-mcp/internal/snapshot"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (h *handler) handleHealth(c *gin.Context) {
	store := h.analyzer.Store()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"history": gin.H{
			string(fairness.Custodians):  store.Count(fairness.Custodians),
			string(fairness.ArmedGuards): store.Count(fairness.ArmedGuards),
		},
		"cache": h.analyzer.CacheStats(),
	})
}

func (h *handler) handleThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"thresholds":             h.analyzer.Thresholds(),
		"excludeInactiveDefault": h.cfg.ExcludeInactive,
	})
}

// handleReport accepts a snapshot document and returns one report per section.
// The excludeInactive query parameter overrides the document's flag.
func (h *handler) handleReport(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return
	}

	f, err := snapshot.Parse(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var override *bool
	if raw, ok := c.GetQuery("excludeInactive"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid excludeInactive: " + raw})
			return
		}
		override = &v
	}

	results, err := h.analyzer.AnalyzeSnapshot(c.Request.Context(), f, override)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	includeAll := c.Query("includeAllDeviations") == "true"
	out := make([]gin.H, 0, len(results))
	for _, res := range results {
		entry := gin.H{
			"runId":  res.RunID,
			"kind":   res.Kind,
			"cached": res.Cached,
			"report": res.Report,
		}
		if includeAll {
			entry["allDeviations"] = res.Report.AllDeviations()
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

type recordRequest struct {
	Assignments []snapshot.Assignment `json:"assignments" binding:"required"`
}

func (h *handler) handleRecord(c *gin.Context) {
	kind, err := snapshot.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	records, err := snapshot.MapAssignments(req.Assignments)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := h.analyzer.Record(kind, records)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"kind":     kind,
		"received": len(records),
		"added":    added,
		"stored":   h.analyzer.Store().Count(kind),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, snapshot.ErrInvalidSnapshot), errors.Is(err, fairness.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		log.Error().Err(err).Msg("Fairness analysis failed")
		return http.StatusInternalServerError
	}
}
