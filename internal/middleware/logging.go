package middleware

import (
	"EmotionAPI/pkg/log"
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func LoggerConfig() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, ok := c.Locals(RequestIDKey).(string)
		if !ok || requestID == "" {
			requestID = "unknown"
		}

		c.Locals("request_id", requestID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		if err != nil && status == fiber.StatusInternalServerError {
			return err
		}

		logFields := log.Fields{
			"request_id":    requestID,
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"host":          c.Hostname(),
			"user_agent":    c.Get("User-Agent"),
			"response_size": len(c.Response().Body()),
		}

		if body := c.Request().Body(); len(body) > 0 {
			logFields["request_body"] = sanitizeRequestBody(string(body))
		}

		if status >= 500 {
			traceID := log.ErrorWithTraceID(logFields, "Server error")
			c.Set("X-Trace-ID", traceID)
		} else if status >= 400 {
			log.Warn(logFields, "Client error")
		} else {
			log.Info(logFields, "Success")
		}

		return err
	}
}

// sanitizeRequestBody keeps secrets and multi-megabyte base64 frames out of
// the log stream.
func sanitizeRequestBody(body string) string {
	var jsonBody map[string]interface{}
	if err := json.Unmarshal([]byte(body), &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	sensitiveFields := []string{
		"api_key", "password", "token", "secret", "key", "auth",
		"credential", "authorization",
	}

	for _, field := range sensitiveFields {
		if _, exists := jsonBody[field]; exists {
			jsonBody[field] = "[SECRET]"
		}
	}

	if img, exists := jsonBody["image"]; exists {
		if s, ok := img.(string); ok {
			jsonBody["image"] = "[IMAGE:" + lengthLabel(len(s)) + "]"
		}
	}

	// Plain Marshal would HTML-escape the < in the size labels.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jsonBody); err != nil {
		return "[sanitization-failed]"
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

func lengthLabel(n int) string {
	switch {
	case n < 1024:
		return "<1KB"
	case n < 1024*1024:
		return "<1MB"
	default:
		return ">=1MB"
	}
}
