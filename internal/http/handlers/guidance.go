package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/http/response"
	"github.com/yungbote/crystal-grimoire-backend/internal/services"
)

type GuidanceHandler struct {
	guidance services.GuidanceService
}

func NewGuidanceHandler(guidance services.GuidanceService) *GuidanceHandler {
	return &GuidanceHandler{guidance: guidance}
}

// POST /api/guidance/personalized
// body: { "question": "...", "guidance_type": "general" }; "query" and "context_type" are accepted too.
func (h *GuidanceHandler) Personalized(c *gin.Context) {
	var req struct {
		services.GuidanceRequest
		Query       string `json:"query"`
		ContextType string `json:"context_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	if req.Question == "" {
		req.Question = req.Query
	}
	if req.GuidanceType == "" {
		req.GuidanceType = req.ContextType
	}
	res, err := h.guidance.Personalized(c.Request.Context(), req.GuidanceRequest)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/guidance/sessions?limit=&offset=
func (h *GuidanceHandler) Sessions(c *gin.Context) {
	limit, offset := pageParams(c)
	items, err := h.guidance.History(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}
