package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/snapshot"
	"github.com/matchpulse/betengine/pkg/database"
	"github.com/matchpulse/betengine/pkg/utils"
)

// PickHandler serves recorded decisions back out of the snapshot store.
type PickHandler struct {
	db *database.DB
}

func NewPickHandler(db *database.DB) *PickHandler {
	return &PickHandler{db: db}
}

// GetMatchPicks returns every recorded decision for one fixture, newest
// first. Each row carries the replayed pick so callers see the same
// object the pipeline emitted.
// GET /api/v1/picks/:matchID
func (h *PickHandler) GetMatchPicks(c *gin.Context) {
	matchID := c.Param("matchID")

	var snaps []models.BetSnapshot
	err := h.db.WithContext(c.Request.Context()).
		Where("match_id = ?", matchID).
		Order("created_at DESC").
		Find(&snaps).Error
	if err != nil {
		utils.SendInternalError(c, "loading picks: "+err.Error())
		return
	}
	if len(snaps) == 0 {
		utils.SendNotFound(c, "no recorded picks for match "+matchID)
		return
	}

	type recorded struct {
		BetID     string       `json:"bet_id"`
		CreatedAt string       `json:"created_at"`
		Action    string       `json:"action"`
		Result    string       `json:"result,omitempty"`
		Pick      *models.Pick `json:"pick"`
	}
	out := make([]recorded, 0, len(snaps))
	for i := range snaps {
		p, err := snapshot.Replay(&snaps[i])
		if err != nil {
			utils.SendInternalError(c, err.Error())
			return
		}
		out = append(out, recorded{
			BetID:     snaps[i].BetID,
			CreatedAt: snaps[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Action:    snaps[i].FinalAction,
			Result:    snaps[i].Result,
			Pick:      p,
		})
	}
	utils.SendSuccess(c, out)
}

// GetSnapshot returns one snapshot with its model votes.
// GET /api/v1/snapshots/:id
func (h *PickHandler) GetSnapshot(c *gin.Context) {
	var snap models.BetSnapshot
	err := h.db.WithContext(c.Request.Context()).
		Preload("Votes").
		Where("bet_id = ?", c.Param("id")).
		First(&snap).Error
	if err == gorm.ErrRecordNotFound {
		utils.SendNotFound(c, "snapshot not found")
		return
	}
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, snap)
}
