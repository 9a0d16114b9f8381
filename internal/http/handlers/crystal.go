package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/http/response"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
	"github.com/yungbote/crystal-grimoire-backend/internal/services"
)

type CrystalHandler struct {
	identification services.IdentificationService
	maxBodyBytes   int64
}

// NewCrystalHandler caps request bodies at the base64 size of maxImageBytes plus headroom.
func NewCrystalHandler(identification services.IdentificationService, maxImageBytes int64) *CrystalHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = services.DefaultMaxImageBytes
	}
	return &CrystalHandler{
		identification: identification,
		maxBodyBytes:   maxImageBytes*4/3 + 64<<10,
	}
}

// POST /api/crystal/identify
// body: { "image_data": "<base64 or data URL>", "mime_type": "image/jpeg", "user_context": {...} }
func (h *CrystalHandler) Identify(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req struct {
		services.IdentifyRequest
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondAPIError(c, apierr.New(http.StatusRequestEntityTooLarge, "image_too_large", err))
			return
		}
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	if req.ImageData == "" {
		req.ImageData = req.Image
	}

	res, err := h.identification.Identify(c.Request.Context(), req.IdentifyRequest)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
