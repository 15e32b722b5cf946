package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/matchpulse/betengine/internal/api/handlers"
	"github.com/matchpulse/betengine/internal/notifier"
	"github.com/matchpulse/betengine/internal/orchestrator"
	"github.com/matchpulse/betengine/internal/snapshot"
	"github.com/matchpulse/betengine/internal/stream"
	"github.com/matchpulse/betengine/pkg/database"
)

// SetupRoutes wires all versioned API routes onto the group.
func SetupRoutes(group *gin.RouterGroup, db *database.DB, rdb *redis.Client, orch *orchestrator.Orchestrator, rec *snapshot.Recorder, hub *stream.Hub, n *notifier.Notifier) {
	analyzeHandler := handlers.NewAnalyzeHandler(orch, hub, n)
	pickHandler := handlers.NewPickHandler(db)
	settlementHandler := handlers.NewSettlementHandler(rec, hub)

	group.POST("/analyze", analyzeHandler.Analyze)

	group.GET("/picks/:matchID", pickHandler.GetMatchPicks)

	group.GET("/snapshots/:id", pickHandler.GetSnapshot)
	group.PUT("/snapshots/:id/settle", settlementHandler.Settle)
}
