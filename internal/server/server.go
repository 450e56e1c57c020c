package server

import (
	"log"
	"strings"

	"aficionado-be/internal/bootstrap"
	"aficionado-be/internal/config"
	"aficionado-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	bodyLimit := int(cfg.Workspace.UploadMaxBytes) * 5
	if bodyLimit < 10*1024*1024 {
		bodyLimit = 10 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: serverutils.ErrorHandler,
	})

	// Middleware
	app.Use(cors.New(corsConfig(cfg.App.CorsAllowedOrigins)))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

// corsConfig allows credentials only for an explicit origin list; browsers
// refuse credentials with a wildcard and fiber panics on that combination.
func corsConfig(origins string) cors.Config {
	conf := cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Session-Id",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, X-Session-Id",
	}
	for _, origin := range strings.Split(origins, ",") {
		if strings.TrimSpace(origin) == "*" {
			log.Printf("[WARN] CORS_ALLOWED_ORIGINS is a wildcard; cross-origin requests will not carry credentials")
			conf.AllowOrigins = "*"
			conf.AllowCredentials = false
			break
		}
	}
	return conf
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	jwtMiddleware := serverutils.JwtMiddleware(cfg.Auth.JWTSecret, cfg.Workspace.ExamplesPrefix)

	api := app.Group("/api")
	api.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"status": "up"}))
	})

	c.OAuthController.RegisterRoutes(api)
	c.SessionController.RegisterRoutes(api, jwtMiddleware)
	c.WorkspaceController.RegisterRoutes(api, jwtMiddleware)

	c.PageController.RegisterRoutes(app)
}
