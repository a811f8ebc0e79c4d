package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a Cache-Control policy on GET responses that do not
// already carry one, and answers 304 for successful GET bodies whose weak
// ETag matches If-None-Match.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Method() != fiber.MethodGet {
			return nil
		}

		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) == 0 {
			if ttl := cachePolicy(c.Path()); ttl != "" {
				c.Set(fiber.HeaderCacheControl, ttl)
			}
		}

		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

func cachePolicy(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case strings.HasPrefix(path, "/api/v1/imoveis/proximos"):
		// New listings must show up on the next query.
		return "no-cache"
	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	}
	return ""
}
