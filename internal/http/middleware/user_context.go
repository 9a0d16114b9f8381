package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/ctxutil"
)

const (
	headerUserID = "X-User-Id"
	queryUserID  = "user_id"
)

// AttachUserContext stores the caller's user id in the request context. The id is
// taken as supplied; verifying it belongs to the gateway in front of this service.
func AttachUserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(headerUserID))
		if uid == "" {
			uid = strings.TrimSpace(c.Query(queryUserID))
		}
		if uid != "" {
			ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: uid})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
