package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kadabra/internal/dto"
	"gorm.io/gorm"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Health godoc
// @Summary Health check
// @Description Reports process status plus database reachability. The service keeps running in degraded mode when the database is down; this is where that state is surfaced.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	dbStatus := "unavailable"
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(pingCtx); err == nil {
				dbStatus = "ok"
			}
		}
	}
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", DB: dbStatus})
}
