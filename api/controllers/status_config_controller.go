package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/claimdesk/api/models"
	"github.com/moyoez/claimdesk/claim"
	"github.com/moyoez/claimdesk/tool"
)

// UserStatus returns server status for the intake page (running, notify_ws_enabled).
// GET /api/self/v1/status
func UserStatus(c *gin.Context) {
	cfg := tool.GetCurrentConfig()
	_, knownModel := claim.RatesFor(cfg.Model)
	c.JSON(http.StatusOK, gin.H{
		"running":           true,
		"notify_ws_enabled": models.GetNotifyDispatcher().WSEnabled(),
		"model":             cfg.Model,
		"model_rate_known":  knownModel,
	})
}

// UserConfigGet returns the effective configuration.
// GET /api/self/v1/config
func UserConfigGet(c *gin.Context) {
	cfg := tool.GetCurrentConfig()
	c.JSON(http.StatusOK, cfg)
}
