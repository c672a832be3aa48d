package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pricehistory/internal/domain/dto"
)

// ErrorHandler is the single error boundary of the API. Handlers report a
// failure with c.Error(err) and abort; once the chain unwinds, ErrorHandler
// turns the last recorded error into a JSON response:
//
//	HTTP/1.1 500 Internal Server Error
//	{"detail": "<err.Error()>"}
//
// It never overwrites a response a handler already wrote.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	c.JSON(statusFor(err), dto.NewErrorResponse("", err))
}

// statusFor maps a handler error to an HTTP status. Every failure, whether
// transient (network) or permanent (bad ticker upstream), is a server error.
func statusFor(error) int {
	return http.StatusInternalServerError
}

// AbortWithError stops the chain and writes status with {"detail": ...}.
// The detail is err's text when err is non-nil, msg otherwise. Used for
// request validation failures that are answered before the service runs.
func AbortWithError(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(msg, err))
}

// NotFound answers unknown routes with {"detail": "Not Found"}.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{Detail: "Not Found"})
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, dto.ErrorResponse{Detail: "Method Not Allowed"})
}
