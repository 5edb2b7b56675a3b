package middleware

import (
	"log/slog"
	"net/http"

	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

const maxStackLines = 16

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		// Most recent error wins
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]

			if err.IsType(gin.ErrorTypePublic) {
				if resp, ok := err.Meta.(httperr.Response); ok {
					if resp.Status >= http.StatusInternalServerError {
						logServerError(c, err.Err)
					}
					c.JSON(resp.Status, resp)
					return
				}
			}
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
	}
}

func logServerError(c *gin.Context, err error) {
	attrs := []any{"error", err.Error(), "method", c.Request.Method, "path", c.Request.URL.Path}
	if gin.Mode() != gin.ReleaseMode {
		attrs = append(attrs, "stack", errs.ExtractStackLines(err, maxStackLines))
	}
	slog.Error("request failed", attrs...)
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic", "error", err, "path", c.Request.URL.Path)

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"

				c.JSON(http.StatusInternalServerError, resp)
				c.Abort()
			}
		}()
		c.Next()
	}
}
