package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxInboundIDLen = 128
)

// AttachRequestIDs assigns the request and trace ids used by the request log and echoed
// back to the client. An active span's trace id beats any inbound X-Trace-Id; inbound ids
// that are too long or carry characters outside [A-Za-z0-9._:-] are replaced.
func AttachRequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)

		ids := ctxutil.TraceData{RequestID: inboundID(c.GetHeader(headerRequestID))}
		if ids.RequestID == "" {
			ids.RequestID = uuid.NewString()
		}
		switch sc := span.SpanContext(); {
		case sc.HasTraceID():
			ids.TraceID = sc.TraceID().String()
		default:
			ids.TraceID = inboundID(c.GetHeader(headerTraceID))
		}
		if ids.TraceID == "" {
			ids.TraceID = ids.RequestID
		}

		span.SetAttributes(attribute.String("http.request_id", ids.RequestID))
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, &ids))
		c.Header(headerTraceID, ids.TraceID)
		c.Header(headerRequestID, ids.RequestID)
		c.Next()
	}
}

func inboundID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxInboundIDLen {
		return ""
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return ""
		}
	}
	return id
}
