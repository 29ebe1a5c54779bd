//go:build unit

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotentApp(t *testing.T, ttl time.Duration) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	app := fiber.New()
	app.Post("/pay", Idempotency(client, ttl, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusCreated)
	})

	return app, server
}

func payRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}

	return req
}

func TestIdempotencyRejectsReplay(t *testing.T) {
	t.Parallel()

	app, _ := newIdempotentApp(t, time.Hour)

	resp, err := app.Test(payRequest("order-42"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(payRequest("order-42"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// A different key is a different request.
	resp, err = app.Test(payRequest("order-43"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestIdempotencyKeyExpires(t *testing.T) {
	t.Parallel()

	app, server := newIdempotentApp(t, time.Minute)

	resp, err := app.Test(payRequest("order-42"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	server.FastForward(2 * time.Minute)

	resp, err = app.Test(payRequest("order-42"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	t.Parallel()

	app, _ := newIdempotentApp(t, time.Hour)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(payRequest(""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

func TestIdempotencyFailsOpenWhenRedisDown(t *testing.T) {
	t.Parallel()

	app, server := newIdempotentApp(t, time.Hour)
	server.Close()

	resp, err := app.Test(payRequest("order-42"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestIdempotencyNilClientPassesThrough(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Post("/pay", Idempotency(nil, time.Hour, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusCreated)
	})

	resp, err := app.Test(payRequest("order-42"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
