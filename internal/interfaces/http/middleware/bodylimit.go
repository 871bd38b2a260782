package middleware

import (
	"net/http"
	"strings"

	"github.com/documentiulia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies at maxBytes. Multipart uploads (receipt files,
// CSV imports) get maxUpload instead; their handlers enforce tighter per-file limits.
func BodyLimit(maxBytes, maxUpload int64) gin.HandlerFunc {
	if maxUpload < maxBytes {
		maxUpload = maxBytes
	}
	return func(c *gin.Context) {
		limit := maxBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = maxUpload
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePayloadTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString(RequestIDKey),
			))
			return
		}

		// Chunked bodies carry no Content-Length; the reader enforces the cap while streaming.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
