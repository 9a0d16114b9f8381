package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/http/response"
	"github.com/yungbote/crystal-grimoire-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/users/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, p)
}

// PUT /api/users/profile (POST accepted)
// body: { "sun_sign", "moon_sign", "rising_sign", "dominant_element", "spiritual_goals", "current_challenges", "display_name" }
// A "profile_data" wrapper object is unwrapped.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req struct {
		services.UpdateProfileInput
		ProfileData *services.UpdateProfileInput `json:"profile_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	in := req.UpdateProfileInput
	if req.ProfileData != nil {
		in = *req.ProfileData
	}
	p, err := h.profiles.Update(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, p)
}
