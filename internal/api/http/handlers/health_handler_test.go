package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyReportsEachDependency(t *testing.T) {
	healthy := checkFunc(func(context.Context) error { return nil })
	broken := checkFunc(func(context.Context) error { return errors.New("connection refused") })

	app := fiber.New()
	h := NewHealthHandler("sales-service", "test", func() int { return 3 },
		NamedChecker{Name: "postgres", Checker: healthy},
		NamedChecker{Name: "storage", Checker: broken},
	)
	app.Get("/ready", h.Ready)
	app.Get("/live", h.Live)

	resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Error.Details["postgres"])
	assert.Equal(t, "connection refused", body.Error.Details["storage"])

	resp, err = app.Test(httptest.NewRequest("GET", "/live", nil))
	require.NoError(t, err)
	var live map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&live))
	assert.Equal(t, float64(3), live["realtimeConnections"])
}
