package api

import (
	"net/http"

	"LifeStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatsHandler 仪表盘统计
type StatsHandler struct {
	stats  *service.StatsService
	logger *logrus.Logger
}

func NewStatsHandler(stats *service.StatsService, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// Snapshot 完整统计文档
// GET /api/stats?include_cum=false
func (h *StatsHandler) Snapshot(c *gin.Context) {
	snap, err := h.stats.Snapshot(c.Request.Context(), boolQuery(c, "include_cum", false))
	if err != nil {
		writeError(c, h.logger, "StatsSnapshot", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Leaderboard GET /api/leaderboard?limit=10
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	board, err := h.stats.Leaderboard(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		writeError(c, h.logger, "Leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, board)
}
