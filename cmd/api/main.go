package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/handlers"
	applog "alfredoptarigan/kryptohire/internal/logger"
	"alfredoptarigan/kryptohire/internal/repositories"
	"alfredoptarigan/kryptohire/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Println("✅ Config loaded successfully")

	appLogger, err := applog.New(cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	subRepo := repositories.NewSubscriptionRepository(db)
	log.Println("✅ Repositories initialized successfully")

	ctx := context.Background()

	storageService, err := services.NewStorageService(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}

	resumeIndex, err := services.NewResumeIndexFromConfig(ctx, cfg.Qdrant, cfg.AI, appLogger)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if resumeIndex.Enabled() {
		log.Println("✅ Qdrant initialized successfully")
	}

	events := services.NewNoopPublisher()
	if cfg.Events.RabbitMQURL != "" {
		events, err = services.NewRabbitPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange, appLogger)
		if err != nil {
			log.Fatalf("❌ Failed to connect to RabbitMQ: %v", err)
		}
		log.Println("✅ RabbitMQ publisher initialized")
	}
	defer events.Close()

	var billingGateway services.BillingGateway
	if cfg.Stripe.SecretKey != "" {
		billingGateway = services.NewStripeGateway(cfg.Stripe)
		log.Println("✅ Stripe billing initialized")
	}

	// Initialize services
	planService := services.NewPlanService(subRepo)
	authService := services.NewAuthService(userRepo, tokenRepo, profileRepo, subRepo, cfg.Auth, appLogger)
	profileService := services.NewProfileService(profileRepo)

	runner := services.NewFallbackRunner(services.NewClientFactory(cfg.AI, cfg.Server.BaseURL), appLogger)
	aiService := services.NewAIService(cfg.AI, runner)

	resumeService := services.NewResumeService(resumeRepo, jobRepo, profileRepo, resumeIndex, appLogger)
	jobService := services.NewJobService(jobRepo, resumeRepo, aiService, resumeIndex, appLogger)
	tailoringService := services.NewTailoringService(planService, resumeService, jobRepo, aiService, events, appLogger)
	importService := services.NewImportService(
		storageService,
		services.NewDocumentParser(),
		aiService,
		planService,
		resumeService,
		cfg.Storage.MaxFileSize,
		appLogger,
	)
	billingService := services.NewBillingService(billingGateway, userRepo, subRepo, appLogger)
	renderer := services.NewResumeRenderer(cfg.Server.ChromePath)
	rateLimiter := services.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	log.Println("✅ Services initialized successfully")

	// Initialize handlers
	h := &handlers.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Profile:  handlers.NewProfileHandler(profileService),
		Resume:   handlers.NewResumeHandler(resumeService, tailoringService, importService, renderer),
		Job:      handlers.NewJobHandler(jobService, planService),
		Optimize: handlers.NewOptimizeHandler(tailoringService),
		Billing:  handlers.NewBillingHandler(billingService, planService),
	}
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Kryptohire API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: apperrors.NewErrorHandler(appLogger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	handlers.Register(app, handlers.Routes(h, cfg.Server.BaseURL), handlers.Middleware{
		Auth:           authService,
		Limiter:        rateLimiter,
		LoginPerMinute: cfg.RateLimit.LoginPerMinute,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Kryptohire API",
			"version": "1.0.0",
			"docs":    handlers.APIPrefix + "/docs",
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: %s%s/docs\n", cfg.Server.BaseURL, handlers.APIPrefix)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
