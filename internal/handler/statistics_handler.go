package handler

import (
	"net/http"

	"sushishop/internal/service"
	"sushishop/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(r Routes) {
	r.Admin.GET("/stats", h.GetAdminStats)
}

// GetAdminStats returns the dashboard counters
// @Summary      Dashboard statistics
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.AdminStats}
// @Router       /api/admin/stats [get]
func (h *StatisticsHandler) GetAdminStats(c *gin.Context) {
	stats, err := h.statisticsService.GetAdminStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
