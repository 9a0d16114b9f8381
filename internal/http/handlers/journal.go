package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/http/response"
	"github.com/yungbote/crystal-grimoire-backend/internal/services"
)

type JournalHandler struct {
	journal services.JournalService
}

func NewJournalHandler(journal services.JournalService) *JournalHandler {
	return &JournalHandler{journal: journal}
}

// GET /api/journals?limit=&offset=
func (h *JournalHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	items, err := h.journal.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

// POST /api/journals
// body: { "entry_type", "title", "content", "mood", "moon_phase", "entry_date", "crystal_ids": ["<uuid>"] }
func (h *JournalHandler) Create(c *gin.Context) {
	var req services.CreateJournalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	h.create(c, req)
}

// POST /api/dreams
// body: { "dream_content", "dream_date", "crystal_ids", "mood" }; journal field names work too.
func (h *JournalHandler) CreateDream(c *gin.Context) {
	var req struct {
		services.CreateJournalInput
		DreamContent string     `json:"dream_content"`
		DreamDate    *time.Time `json:"dream_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, invalidBody(err))
		return
	}
	in := req.CreateJournalInput
	in.EntryType = "dream"
	if in.Content == "" {
		in.Content = req.DreamContent
	}
	if in.EntryDate == nil {
		in.EntryDate = req.DreamDate
	}
	h.create(c, in)
}

// GET /api/journals/patterns?days=&entry_type=
// GET /api/dreams/patterns?days=
func (h *JournalHandler) Patterns(entryType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, _ := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("days", c.Query("timeframe"))))
		q := services.PatternsQuery{Days: days, EntryType: entryType}
		if q.EntryType == "" {
			q.EntryType = c.Query("entry_type")
		}
		patterns, err := h.journal.Patterns(c.Request.Context(), q)
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		response.RespondOK(c, patterns)
	}
}

func (h *JournalHandler) create(c *gin.Context, req services.CreateJournalInput) {
	item, err := h.journal.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, item)
}

// GET /api/journals/:id
func (h *JournalHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	item, err := h.journal.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// DELETE /api/journals/:id
func (h *JournalHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.journal.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
