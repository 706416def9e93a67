package middleware

import (
	"EmotionAPI/pkg/log"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func newTestApp(t *testing.T, handlers ...fiber.Handler) *fiber.App {
	t.Helper()

	app := fiber.New()

	route := append([]fiber.Handler{}, handlers...)
	route = append(route, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/protected", route...)

	return app
}

func quietMiddleware() Middleware {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(logger)
}

func TestAPIKeyMiddlewareOpenWhenUnconfigured(t *testing.T) {
	t.Setenv("APP_API_KEY", "")
	t.Setenv("APP_API_KEY_HASH", "")

	m := quietMiddleware()
	app := newTestApp(t, m.NewAPIKeyMiddleware)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 when no key configured, got %d", resp.StatusCode)
	}
}

func TestAPIKeyMiddlewareEnforcesConfiguredKey(t *testing.T) {
	t.Setenv("APP_API_KEY", "expected-key")
	t.Setenv("APP_API_KEY_HASH", "")

	m := quietMiddleware()
	app := newTestApp(t, m.NewAPIKeyMiddleware)

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{name: "missing header", key: "", status: fiber.StatusUnauthorized},
		{name: "wrong key", key: "guessed", status: fiber.StatusUnauthorized},
		{name: "correct key", key: "expected-key", status: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}

			if tt.status == fiber.StatusUnauthorized {
				body, err := io.ReadAll(resp.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				var payload map[string]string
				if err := json.Unmarshal(body, &payload); err != nil {
					t.Fatalf("unmarshal %q: %v", body, err)
				}
				if payload["code"] != "UNAUTHORIZED" {
					t.Errorf("expected UNAUTHORIZED code, got %q", payload["code"])
				}
			}
		})
	}
}

func TestTokenMiddlewareRejectsBadTokens(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")

	m := quietMiddleware()
	app := newTestApp(t, m.NewTokenMiddleware)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("expected 401, got %d", resp.StatusCode)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	m := quietMiddleware()

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	generated := resp.Header.Get(RequestIDKey)
	if len(generated) != 26 {
		t.Errorf("expected generated ULID request ID, got %q", generated)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDKey, "caller-supplied-id")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(RequestIDKey); got != "caller-supplied-id" {
		t.Errorf("caller request ID must be preserved, got %q", got)
	}
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	m := &middleware{
		rateLimitter: newRateLimiter(1, 2),
		log:          logger,
	}
	app := newTestApp(t, m.NewRateLimiter)

	var last *http.Response
	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		statuses = append(statuses, resp.StatusCode)
		last = resp
	}

	if statuses[0] != fiber.StatusOK || statuses[1] != fiber.StatusOK {
		t.Errorf("burst requests must pass, got %v", statuses)
	}
	if statuses[2] != fiber.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %v", statuses)
	}

	body, err := io.ReadAll(last.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal %q: %v", body, err)
	}
	if payload["error"] != ErrTooManyRequests.Error() {
		t.Errorf("expected %q, got %q", ErrTooManyRequests.Error(), payload["error"])
	}
}

func TestLoggerConfigSetsTraceIDOnServerError(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	log.NewLogger()

	m := quietMiddleware()

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Use(LoggerConfig())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	traceID := resp.Header.Get("X-Trace-ID")
	if traceID == "" {
		t.Fatal("expected X-Trace-ID header on server error")
	}
	if traceID != resp.Header.Get(RequestIDKey) {
		t.Errorf("trace ID %q must match request ID %q", traceID, resp.Header.Get(RequestIDKey))
	}
}

func TestSanitizeRequestBody(t *testing.T) {
	sanitized := sanitizeRequestBody(`{"api_key":"hunter2","image":"` + strings.Repeat("A", 2048) + `"}`)

	if strings.Contains(sanitized, "hunter2") {
		t.Error("api_key value leaked into log output")
	}
	if !strings.Contains(sanitized, "[SECRET]") {
		t.Errorf("expected [SECRET] marker, got %q", sanitized)
	}
	if !strings.Contains(sanitized, "[IMAGE:<1MB]") {
		t.Errorf("expected image placeholder, got %q", sanitized)
	}

	if got := sanitizeRequestBody("raw bytes"); got != "[non-JSON body]" {
		t.Errorf("expected [non-JSON body], got %q", got)
	}
}
