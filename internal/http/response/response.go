package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

var errInternal = errors.New("internal server error")

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps err through apierr.From. Internal failures are reported without
// their message and attached to the gin context for the request logger.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, "internal", nil)
	}
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if status == http.StatusInternalServerError {
		RespondError(c, status, ae.Code, errInternal)
		return
	}
	RespondError(c, status, ae.Code, ae)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
