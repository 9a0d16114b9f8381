package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/http/response"
	"github.com/yungbote/crystal-grimoire-backend/internal/services"
)

type MoonHandler struct {
	moon services.MoonService
}

func NewMoonHandler(moon services.MoonService) *MoonHandler {
	return &MoonHandler{moon: moon}
}

// GET /api/moon/current-phase
func (h *MoonHandler) CurrentPhase(c *gin.Context) {
	response.RespondOK(c, h.moon.CurrentPhase())
}

// GET /api/moon/rituals/:phase
func (h *MoonHandler) Ritual(c *gin.Context) {
	r, err := h.moon.Ritual(c.Request.Context(), c.Param("phase"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"ritual":     r,
		"moon_phase": h.moon.CurrentPhase(),
	})
}
