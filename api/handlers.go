package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"safeRestServer/checker"
)

type URLChecker interface {
	Validate(raw *string) (string, error)
	Check(ctx context.Context, url string) (*checker.Decision, bool)
}

type urlRequest struct {
	URL *string `json:"url"`
}

type handler struct {
	checker URLChecker
	log     logrus.FieldLogger
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// decide serves both check endpoints; they differ only in the events they
// log and the message returned on failure.
func (h *handler) decide(r route) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(routeKey, r)

		var req urlRequest
		if err := c.BodyParser(&req); err != nil {
			// A body that is not an object with a string url is the same as
			// no url at all.
			req.URL = nil
		}

		url, err := h.checker.Validate(req.URL)
		if err != nil {
			var ve *checker.ValidationError
			if errors.As(err, &ve) {
				return c.Status(fiber.StatusBadRequest).JSON(ve)
			}
			return err
		}

		d, cached := h.checker.Check(c.UserContext(), url)
		if cached {
			h.log.WithFields(logrus.Fields{"url": url, "cached": true}).Info(r.cachedEvent)
		}
		return c.JSON(d)
	}
}
