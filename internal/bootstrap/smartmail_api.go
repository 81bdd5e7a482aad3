package bootstrap

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	httpin "smartmail_server/adapter/in/http"
	"smartmail_server/config"
	"smartmail_server/infra/middleware"
	"smartmail_server/pkg/logger"
)

// NewAPI builds the fiber app with all routes registered. The returned
// cleanup closes every backing connection.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "smartmail-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    2 * 1024 * 1024,
		ServerHeader: "",
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" {
		if cfg.IsProduction() {
			allowOrigins = ""
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	httpin.NewHealthHandler(deps.DB, deps.Redis, deps.Mongo).Register(app)

	// Chat surfaces live at the root; SalesIQ and Cliq post to fixed paths.
	httpin.NewWebhookHandler(deps.Pipeline, deps.Recorder).Register(app)
	httpin.NewBotHandler(deps.Sync, deps.Mail).Register(app)

	api := app.Group("/api/v1")
	httpin.NewAnalyzeHandler(deps.Pipeline, deps.Recorder).Register(api)
	httpin.NewDashboardHandler(deps.Report, deps.Sync, cfg.SyncBatchSize).Register(api)

	return app, cleanup, nil
}
