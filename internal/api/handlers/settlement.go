package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matchpulse/betengine/internal/metrics"
	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/snapshot"
	"github.com/matchpulse/betengine/internal/stream"
	"github.com/matchpulse/betengine/pkg/utils"
)

// SettlementHandler applies final results to recorded snapshots.
type SettlementHandler struct {
	recorder *snapshot.Recorder
	hub      *stream.Hub
}

func NewSettlementHandler(recorder *snapshot.Recorder, hub *stream.Hub) *SettlementHandler {
	return &SettlementHandler{recorder: recorder, hub: hub}
}

type settleRequest struct {
	Result models.Result `json:"result" binding:"required"`
}

func validResult(r models.Result) bool {
	switch r {
	case models.ResultWin, models.ResultLoss, models.ResultPush, models.ResultVoid:
		return true
	}
	return false
}

// Settle writes the result to a snapshot exactly once.
// PUT /api/v1/snapshots/:id/settle
func (h *SettlementHandler) Settle(c *gin.Context) {
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid settlement request", err.Error())
		return
	}
	if !validResult(req.Result) {
		utils.SendValidationError(c, "result must be one of WIN, LOSS, PUSH, VOID", string(req.Result))
		return
	}

	snap, err := h.recorder.Settle(c.Request.Context(), c.Param("id"), req.Result)
	if errors.Is(err, utils.ErrNotFound) {
		utils.SendNotFound(c, "snapshot not found")
		return
	}
	if errors.Is(err, utils.ErrAlreadySettled) {
		utils.SendConflict(c, "snapshot already settled")
		return
	}
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError,
			utils.NewAppError(utils.ErrCodeSettlement, "settlement failed", err.Error()))
		return
	}

	metrics.SettlementsTotal.WithLabelValues(string(req.Result)).Inc()
	if h.hub != nil {
		h.hub.Broadcast(stream.Event{Type: stream.EventSettled, Data: snap})
	}
	utils.SendSuccess(c, snap)
}
