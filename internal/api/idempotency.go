package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/RafaelEmery/payments-engine/pkg/log"
	pkghttp "github.com/RafaelEmery/payments-engine/pkg/net/http"
)

// HeaderIdempotencyKey is the request header carrying the client key.
const HeaderIdempotencyKey = "Idempotency-Key"

const idempotencyKeyPrefix = "payments:idempotency:"

// Idempotency returns a middleware that rejects replays of requests carrying
// an Idempotency-Key header. The key is claimed with SETNX and held for ttl;
// a second request with the same key within the window gets a 409.
//
// Requests without the header pass through untouched, as does everything
// when client is nil. Redis outages fail open: availability wins over replay
// protection.
func Idempotency(client *redis.Client, ttl time.Duration, logger log.Logger) fiber.Handler {
	if logger == nil {
		logger = log.NewNop()
	}

	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || client == nil {
			return c.Next()
		}

		claimed, err := client.SetNX(c.UserContext(), idempotencyKeyPrefix+key, "1", ttl).Result()
		if err != nil {
			logger.Log(c.UserContext(), log.LevelError, "idempotency check unavailable, allowing request",
				log.Err(err),
			)

			return c.Next()
		}

		if !claimed {
			return pkghttp.RenderError(c, pkghttp.ErrorResponse{
				Code:    http.StatusConflict,
				Title:   "conflict",
				Message: "request with this idempotency key was already accepted",
			})
		}

		return c.Next()
	}
}
