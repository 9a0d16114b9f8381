package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/http/response"
	"github.com/yungbote/crystal-grimoire-backend/internal/services"
)

type CollectionHandler struct {
	collection services.CollectionService
}

func NewCollectionHandler(collection services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collection: collection}
}

// GET /api/crystals?limit=&offset=
func (h *CollectionHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	page, err := h.collection.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// POST /api/crystals
// body: { "identification_id": "<uuid>" } or { "unified": {...} }, plus optional name, notes, intentions
func (h *CollectionHandler) Add(c *gin.Context) {
	var req services.AddCollectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	item, err := h.collection.Add(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, item)
}

// GET /api/crystals/:id
func (h *CollectionHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	item, err := h.collection.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// PATCH /api/crystals/:id
func (h *CollectionHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req services.UpdateCollectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	item, err := h.collection.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// DELETE /api/crystals/:id
func (h *CollectionHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.collection.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/crystals/stats
func (h *CollectionHandler) Stats(c *gin.Context) {
	stats, err := h.collection.Stats(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}
