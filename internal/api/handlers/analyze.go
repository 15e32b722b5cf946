package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/notifier"
	"github.com/matchpulse/betengine/internal/orchestrator"
	"github.com/matchpulse/betengine/internal/stream"
	"github.com/matchpulse/betengine/pkg/utils"
)

// AnalyzeHandler exposes the batch analysis pipeline.
type AnalyzeHandler struct {
	orch     *orchestrator.Orchestrator
	hub      *stream.Hub
	notifier *notifier.Notifier
}

func NewAnalyzeHandler(orch *orchestrator.Orchestrator, hub *stream.Hub, n *notifier.Notifier) *AnalyzeHandler {
	return &AnalyzeHandler{orch: orch, hub: hub, notifier: n}
}

// Analyze runs the full pipeline for a batch of fixtures.
// POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid analyze request", err.Error())
		return
	}

	result, err := h.orch.Analyze(c.Request.Context(), req)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError,
			utils.NewAppError(utils.ErrCodeAnalysis, "analysis run failed", err.Error()))
		return
	}

	if h.hub != nil {
		for _, p := range result.TopPicks {
			h.hub.Broadcast(stream.Event{Type: stream.EventPick, Data: p})
		}
		h.hub.Broadcast(stream.Event{
			Type:      stream.EventRun,
			Timestamp: time.Now().UTC(),
			Data: gin.H{
				"matches":   len(req.Matches),
				"picks":     len(result.AllPicks),
				"top_picks": len(result.TopPicks),
				"failed":    result.Failed,
			},
		})
	}
	// alerting is detached from the request: it must survive the
	// response and never add to its latency
	go func(picks []*models.Pick) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		h.notifier.NotifyRun(ctx, picks)
	}(result.TopPicks)

	utils.SendSuccess(c, result)
}
