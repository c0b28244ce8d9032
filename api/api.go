package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"safeRestServer/config"
)

const routeKey = "route"

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// route names the log events and failure message of one check endpoint.
type route struct {
	cachedEvent string
	errorEvent  string
	failure     string
}

var (
	checkURLRoute    = route{"url_check_cached", "check_url_error", "An error occurred while checking the URL"}
	riskDetailsRoute = route{"risk_details_cached", "risk_details_error", "An error occurred while analyzing the URL"}
)

func New(cfg *config.Config, chk URLChecker, log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "safeRestServer " + config.AppVersion,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	access := log.WriterLevel(logrus.InfoLevel)
	app.Hooks().OnShutdown(access.Close)

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigin,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(logger.New(logger.Config{
		Format:        "${ip} ${method} ${path} ${status} ${latency} ${bytesSent}\n",
		Output:        access,
		DisableColors: true,
	}))

	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	app.Use("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{
				Error:   "rate_limited",
				Message: "Too many requests, please try again later",
			})
		},
	}))

	h := &handler{checker: chk, log: log}
	routes := app.Group("/api")
	routes.Get("/health", h.health)
	routes.Post("/check-url", h.decide(checkURLRoute))
	routes.Post("/risk-details", h.decide(riskDetailsRoute))

	if cfg.LandingDir != "" {
		app.Static("/", cfg.LandingDir)
	}

	return app
}

func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errorBody{Error: "http_error", Message: fe.Message})
		}

		r, ok := c.Locals(routeKey).(route)
		if !ok {
			r = route{errorEvent: "request_error", failure: "An unexpected error occurred"}
		}
		log.WithFields(logrus.Fields{"err": err.Error(), "path": c.Path()}).Error(r.errorEvent)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody{
			Error:   "internal_error",
			Message: r.failure,
		})
	}
}
