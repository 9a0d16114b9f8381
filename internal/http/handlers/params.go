package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

func idParam(c *gin.Context) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.BadRequest("invalid_id", "id %q is not a valid uuid", raw)
	}
	return id, nil
}

// pageParams reads limit/offset query values; blanks and garbage become 0 and the
// service applies its own defaults.
func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	offset, _ := strconv.Atoi(strings.TrimSpace(c.Query("offset")))
	return limit, offset
}

func invalidBody(err error) error {
	return apierr.BadRequest("invalid_request", "%v", err)
}
