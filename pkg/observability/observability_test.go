package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/caseservice/config"
)

func TestFromCentralConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Environment = "staging"
	cfg.Observability.ServiceName = "case_service"
	cfg.Observability.Tracing.SamplingRate = 0.5
	cfg.Observability.Metrics.Enabled = true

	c := FromCentralConfig(cfg)
	assert.Equal(t, "case_service", c.ServiceName)
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, 0.5, c.SamplingRate)
	assert.True(t, c.Metrics)
	assert.False(t, c.Tracing)
}

func TestInitTelemetryWithoutExporter(t *testing.T) {
	p, err := InitTelemetry(context.Background(), Config{ServiceName: "case_service", Tracing: true, Metrics: true})
	require.NoError(t, err)
	require.NotNil(t, p.TracerProvider)
	require.NotNil(t, p.PrometheusExporter)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInitTelemetryTracingOnly(t *testing.T) {
	p, err := InitTelemetry(context.Background(), Config{ServiceName: "case_service", Tracing: true})
	require.NoError(t, err)
	assert.NotNil(t, p.TracerProvider)
	assert.Nil(t, p.MeterProvider)
	assert.Nil(t, p.PrometheusExporter)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestFiberMiddlewarePassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(FiberMiddleware("case_service"))
	app.Get("/ping", func(c fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFiberMiddlewareSeesErrorStatus(t *testing.T) {
	var seen int
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		err := c.Next()
		seen = responseStatus(c, err)
		return err
	})
	app.Use(FiberMiddleware("case_service"))
	app.Get("/missing", func(c fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/broken", func(c fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, seen)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/broken", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, seen)
}

func TestTransportDefaultsBase(t *testing.T) {
	assert.NotNil(t, Transport(nil))
}
