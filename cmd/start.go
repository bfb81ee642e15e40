package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/berge472/izzymart/core/config"
	"github.com/berge472/izzymart/core/database"
	"github.com/berge472/izzymart/core/loader"
	"github.com/berge472/izzymart/core/logger"
	"github.com/berge472/izzymart/core/middleware/auth"
	"github.com/berge472/izzymart/core/middleware/rayid"
	"github.com/berge472/izzymart/core/storage"

	"github.com/berge472/izzymart/feature/assets"
	"github.com/berge472/izzymart/feature/catalog"
	"github.com/berge472/izzymart/feature/lookup"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/berge472/izzymart/docs/swagger"
)

// @title IzzyMart API
// @version 1.0
// @description Product lookup and catalog API for the IzzyMart kiosk.
// @host localhost:8080
// @BasePath /api/v1

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the product lookup server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (required, the catalog lives here)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to catalog database", zap.Error(err))
		}
		logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))

		// 4. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		ensureCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := storage.EnsureBucket(ensureCtx, store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Fatal("Failed to ensure bucket", zap.Error(err))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		assetsFeature := assets.NewFeature(db, store, cfg.Storage.Bucket, logg)
		catalogFeature := catalog.NewFeature(db, assetsFeature.Service(), logg)
		lookupFeature := lookup.NewFeature(cfg.Lookup, catalogFeature.Service(), assetsFeature.Service(), logg)
		defer lookupFeature.Close()

		mgr.Register(assetsFeature)
		mgr.Register(catalogFeature)
		mgr.Register(lookupFeature)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		// The resolver and image endpoints stay public so kiosk scanners and
		// inline <img> embeds work without a key.
		publicPrefix := cfg.Server.BasePath + "/products/upc/"
		app.Use(auth.New(auth.Config{
			ApiKey: cfg.Server.ApiKey,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodGet && strings.HasPrefix(c.Path(), publicPrefix)
			},
		}))

		// 5. Load Features
		api := app.Group(cfg.Server.BasePath)
		if err := mgr.LoadAll(api); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("port", cfg.Server.Port),
				zap.String("base_path", cfg.Server.BasePath))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
