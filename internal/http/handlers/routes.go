package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	applog "barter/internal/log"
)

// NewApp builds the fiber app with middleware and every route.
func NewApp(d *Deps) *fiber.App {
	engine := html.New(d.Config.TemplatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: ErrorHandler(d.Metrics),
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(ResolvePrincipal(d.Auth))
	if d.Config.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        d.Config.RateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}))
	}

	// ---------- Pages ----------
	app.Get("/", d.AdHandler.Index)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	// ---------- API ----------
	api := app.Group("/api")
	api.Post("/register", d.AuthHandler.Register)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), d.AuthHandler.Login)

	api.Get("/ads", d.AdHandler.List)
	api.Get("/ads/:id", d.AdHandler.Detail)
	api.Post("/ads", RequireUser(), d.AdHandler.Create)
	api.Patch("/ads/:id", RequireUser(), d.AdHandler.Update)
	api.Delete("/ads/:id", RequireUser(), d.AdHandler.Delete)

	exchange := api.Group("/exchange", RequireUser())
	exchange.Get("/", d.ProposalHandler.List)
	exchange.Post("/", d.ProposalHandler.Create)
	exchange.Get("/:id", d.ProposalHandler.Detail)
	exchange.Patch("/:id", d.ProposalHandler.Update)
	exchange.Delete("/:id", d.ProposalHandler.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})
	return app
}
