package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fhaberland/wgstats/internal/domain/dto"
	"github.com/fhaberland/wgstats/internal/logger"
)

// ErrorHandler is a Gin middleware that converts errors collected via
// c.Error() into a single standardized JSON response.
//
// Behavior:
//   - Runs the handler chain first.
//   - If no response was written and errors were collected, logs the last
//     error and responds with 500 and dto.ErrorResponse.
//   - Handlers that already wrote a response are left untouched.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err

	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Err(err).
		Msg("unhandled request error")

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
}
