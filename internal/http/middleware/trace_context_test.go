package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/ctxutil"
)

func TestAttachRequestIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name        string
		requestID   string
		traceID     string
		wantRequest string
		wantTrace   string
	}{
		{"inbound ids kept", "req-1", "trace.abc:1", "req-1", "trace.abc:1"},
		{"trace falls back to request id", "req-2", "", "req-2", "req-2"},
		{"unsafe trace id replaced", "req-3", "evil\nline", "req-3", "req-3"},
		{"oversized request id replaced", strings.Repeat("a", 129), "t-1", "", "t-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var td *ctxutil.TraceData
			r := gin.New()
			r.Use(AttachRequestIDs())
			r.GET("/", func(c *gin.Context) {
				td = ctxutil.GetTraceData(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.requestID != "" {
				req.Header.Set("X-Request-Id", tc.requestID)
			}
			if tc.traceID != "" {
				req.Header["X-Trace-Id"] = []string{tc.traceID}
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if td == nil || td.RequestID == "" || td.TraceID == "" {
				t.Fatalf("trace data: got=%+v", td)
			}
			if tc.wantRequest != "" && td.RequestID != tc.wantRequest {
				t.Fatalf("request id: got=%q want=%q", td.RequestID, tc.wantRequest)
			}
			if tc.wantRequest == "" && td.RequestID == tc.requestID {
				t.Fatalf("request id: oversized inbound id was kept")
			}
			if td.TraceID != tc.wantTrace {
				t.Fatalf("trace id: got=%q want=%q", td.TraceID, tc.wantTrace)
			}
			if got := rec.Header().Get("X-Request-Id"); got != td.RequestID {
				t.Fatalf("X-Request-Id: got=%q want=%q", got, td.RequestID)
			}
			if got := rec.Header().Get("X-Trace-Id"); got != td.TraceID {
				t.Fatalf("X-Trace-Id: got=%q want=%q", got, td.TraceID)
			}
		})
	}
}

func TestInboundID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  abc-123  ", "abc-123"},
		{"", ""},
		{"has space", ""},
		{"<script>", ""},
		{strings.Repeat("x", 128), strings.Repeat("x", 128)},
		{strings.Repeat("x", 129), ""},
	}
	for _, tc := range cases {
		if got := inboundID(tc.in); got != tc.want {
			t.Fatalf("inboundID(%q): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}
