package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	pkgerrors "github.com/yungbote/crystal-grimoire-backend/internal/pkg/errors"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

func TestRespondAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		want       ErrorEnvelope
	}{
		{
			name:       "api error",
			err:        apierr.BadRequest("missing_question", "question is required"),
			wantStatus: http.StatusBadRequest,
			want:       ErrorEnvelope{Error: APIError{Message: "invalid argument: question is required", Code: "missing_question"}},
		},
		{
			name:       "wrapped sentinel",
			err:        fmt.Errorf("lookup: %w", pkgerrors.ErrNotFound),
			wantStatus: http.StatusNotFound,
			want:       ErrorEnvelope{Error: APIError{Message: "lookup: not found", Code: "not_found"}},
		},
		{
			name:       "unknown error hides detail",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			want:       ErrorEnvelope{Error: APIError{Message: "internal server error", Code: "internal"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondAPIError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.wantStatus)
			}
			var got ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
