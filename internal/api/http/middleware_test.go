package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/observability"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func TestErrorMiddleware(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), time.Second)
	app.Get("/validation", func(*fiber.Ctx) error {
		return apperrors.NewValidationError("bad input", map[string]any{"field": "customer_code"})
	})
	app.Get("/internal", func(*fiber.Ctx) error {
		return errors.New("db down")
	})
	app.Get("/panic", func(*fiber.Ctx) error {
		panic("boom")
	})

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{path: "/validation", wantStatus: 400, wantCode: "VALIDATION_FAILED"},
		{path: "/internal", wantStatus: 500, wantCode: "INTERNAL_ERROR"},
		{path: "/panic", wantStatus: 500, wantCode: "INTERNAL_ERROR"},
		{path: "/missing", wantStatus: 404, wantCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestErrorMiddlewareDetails(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/ticket", func(*fiber.Ctx) error {
		return apperrors.NewNotFound("service ticket", map[string]any{"id": 7})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ticket", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "service ticket not found", body.Error.Message)
	assert.Equal(t, float64(7), body.Error.Details["id"])
}
