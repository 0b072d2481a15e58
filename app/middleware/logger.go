package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"swasthyaflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/pretty"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// Logger tags each request with an id and logs one line when it completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		startTime := time.Now()

		// If it's a POST request and need to print request body
		var bodyStr string
		if c.Request.Method == http.MethodPost {
			bodyStr = getRequestBody(c)
		}

		c.Next()

		// Skip logging for 404 requests
		if c.Writer.Status() == http.StatusNotFound {
			return
		}

		logMsg := fmt.Sprintf("[GIN] %3d | %13v | %15s | %s | %s",
			c.Writer.Status(),
			time.Since(startTime),
			c.ClientIP(),
			c.Request.Method,
			c.Request.URL.Path,
		)
		if bodyStr != "" {
			logMsg += fmt.Sprintf(" | body: %s", bodyStr)
		}

		logger.InfoCtx(c.Request.Context(), "%s", logMsg)
	}
}

// getRequestBody gets request body content
func getRequestBody(c *gin.Context) string {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
		// Reset request body since reading it clears it
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	return CompressBody(string(bodyBytes))
}

// CompressBody compresses JSON using pretty package
func CompressBody(body string) string {
	if len(body) == 0 {
		return ""
	}

	// Compress JSON, ugly=true means remove all whitespace
	compressed := pretty.Ugly([]byte(body))
	if len(compressed) > 1000 {
		return string(compressed[:1000]) + "..."
	}
	return string(compressed)
}
