package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/observability"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

func newMiddlewareApp(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)

	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("ticket", nil)
	})
	app.Get("/panics", func(c *fiber.Ctx) error {
		panic("boom")
	})
	return app, metrics
}

func TestRequestMetricsRecordSuccessStatus(t *testing.T) {
	app, metrics := newMiddlewareApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.EqualValues(t, 1, metrics.RequestCount("/ok", fiber.MethodGet, http.StatusOK))
}

func TestRequestMetricsRecordErrorStatusNotDefault200(t *testing.T) {
	app, metrics := newMiddlewareApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.EqualValues(t, 1, metrics.RequestCount("/missing", fiber.MethodGet, http.StatusNotFound))
	assert.EqualValues(t, 0, metrics.RequestCount("/missing", fiber.MethodGet, http.StatusOK))
	assert.EqualValues(t, 1, metrics.ErrorCount("NOT_FOUND"))
}

func TestPanicsBecomeInternalErrorResponses(t *testing.T) {
	app, metrics := newMiddlewareApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/panics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	assert.EqualValues(t, 1, metrics.RequestCount("/panics", fiber.MethodGet, http.StatusInternalServerError))
	assert.EqualValues(t, 1, metrics.ErrorCount("INTERNAL_ERROR"))
}
