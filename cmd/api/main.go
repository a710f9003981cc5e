package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sefazor/menutranslator-backend/internal/config"
	"github.com/sefazor/menutranslator-backend/internal/controller"
	"github.com/sefazor/menutranslator-backend/internal/handler"
	"github.com/sefazor/menutranslator-backend/internal/metrics"
	"github.com/sefazor/menutranslator-backend/internal/middleware"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"github.com/sefazor/menutranslator-backend/internal/service"
	"github.com/sefazor/menutranslator-backend/pkg/cache"
	"github.com/sefazor/menutranslator-backend/pkg/database"
	"github.com/sefazor/menutranslator-backend/pkg/email"
	jwtPkg "github.com/sefazor/menutranslator-backend/pkg/jwt"
	applogger "github.com/sefazor/menutranslator-backend/pkg/logger"
	"github.com/sefazor/menutranslator-backend/pkg/ocr"
	"github.com/sefazor/menutranslator-backend/pkg/payment"
	"github.com/sefazor/menutranslator-backend/pkg/qrcode"
	"github.com/sefazor/menutranslator-backend/pkg/storage"
	"github.com/sefazor/menutranslator-backend/pkg/translator"
	"github.com/sefazor/menutranslator-backend/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	zlog, err := applogger.New(cfg.App.Environment)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.JWT.Secret == "" {
		zlog.Fatal("JWT_SECRET is required")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.RunMigrations(db); err != nil {
		zlog.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	if err := database.SeedCreditPackages(ctx, db); err != nil {
		zlog.Fatal("Failed to seed credit packages", zap.Error(err))
	}

	m := metrics.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewCreditAccountRepository(db)
	intentRepo := repository.NewPaymentIntentRepository(db)
	translationRepo := repository.NewTranslationRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	packageRepo := repository.NewCreditPackageRepository(db)

	// Storage is optional; without it OCR uploads are processed but not kept.
	var imageStore storage.StorageService
	if cfg.R2Enabled() {
		r2Storage, err := storage.NewCloudflareStorage(ctx, cfg, zlog)
		if err != nil {
			zlog.Fatal("Failed to initialize R2 storage", zap.Error(err))
		}
		imageStore = r2Storage
	} else {
		zlog.Warn("R2 storage not configured, menu images will not be stored")
	}

	emailService := email.NewEmailService(email.Config{
		APIKey:         cfg.Email.ResendAPIKey,
		FromAddress:    cfg.Email.FromAddress,
		FromName:       cfg.Email.FromName,
		SupportAddress: cfg.Email.SupportAddress,
		FrontendURL:    cfg.App.FrontendURL,
	}, zlog)

	stripeService := payment.NewStripeService(payment.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Stripe.Currency,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
		Timeout:       cfg.Stripe.Timeout,
	})

	translatorClient := translator.NewOpenAITranslator(translator.Config{
		APIKey:       cfg.Translation.APIKey,
		BaseURL:      cfg.Translation.BaseURL,
		Model:        cfg.Translation.Model,
		Timeout:      cfg.Translation.Timeout,
		SystemPrompt: cfg.Translation.SystemPrompt,
	})
	ocrClient := ocr.NewDeepseekOCR(cfg.OCR.APIKey, cfg.OCR.URL, cfg.OCR.Timeout)
	qrService := qrcode.NewQRService(cfg.App.FrontendURL + "/menus/")
	tokens := jwtPkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	// Services
	creditService := service.NewCreditService(accountRepo, cfg.Credits, m, zlog)
	translationService := service.NewTranslationService(
		creditService,
		translationRepo,
		menuRepo,
		translatorClient,
		service.TranslationOptions{
			Timeout:        cfg.Translation.Timeout,
			MaxConcurrency: cfg.Translation.MaxConcurrency,
		},
		m,
		zlog,
	)
	checkoutService := service.NewCheckoutService(intentRepo, packageRepo, userRepo, stripeService, emailService, cfg.Stripe.Currency, m, zlog)
	settlementService := service.NewSettlementService(db, intentRepo, creditService, userRepo, stripeService, emailService, m, zlog)
	packageService := service.NewPackageService(packageRepo)
	authService := service.NewAuthService(userRepo, emailService, tokens, cfg.JWT.Secret, cfg.JWT.Issuer, zlog)
	userService := service.NewUserService(userRepo)
	menuService := service.NewMenuService(menuRepo, qrService, imageStore, zlog)
	ocrService := service.NewOCRService(ocrClient, imageStore, zlog)

	// Controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService, creditService)
	paymentController := controller.NewPaymentController(checkoutService, settlementService, packageService)

	validator := utils.NewValidator()

	// Handlers
	authHandler := handler.NewAuthHandler(authController, validator, zlog)
	userHandler := handler.NewUserHandler(userController, validator, zlog)
	paymentHandler := handler.NewPaymentHandler(paymentController, stripeService, validator, zlog)
	creditPackageHandler := handler.NewCreditPackageHandler(packageService, zlog)
	creditHandler := handler.NewCreditHandler(creditService, zlog)
	translationHandler := handler.NewTranslationHandler(translationService, zlog)
	menuHandler := handler.NewMenuHandler(menuService, validator, zlog)
	ocrHandler := handler.NewOCRHandler(ocrService, validator, zlog)

	// Router
	app := fiber.New(fiber.Config{
		BodyLimit: 12 << 20,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(logger.New())

	limiterConfig := limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			// Stripe retries must never be throttled.
			return c.Path() == "/api/payments/webhook"
		},
	}
	if cfg.RedisURL != "" {
		redisStorage, err := cache.NewRedisStorage(cfg.RedisURL)
		if err != nil {
			zlog.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisStorage.Close()
		limiterConfig.Storage = redisStorage
	}
	app.Use(limiter.New(limiterConfig))

	app.Get("/metrics", middleware.MetricsAuth(cfg.App.MetricsToken), adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Stripe webhook (public, signature checked)
	api.Post("/payments/webhook", paymentHandler.HandleStripeWebhook)
	api.Get("/payments/packages", paymentHandler.GetCreditPackages)

	// Protected routes
	api.Use(middleware.AuthMiddleware(tokens, zlog))
	{
		user := api.Group("/user")
		user.Get("/profile", userHandler.GetMyProfile)
		user.Put("/profile", userHandler.UpdateProfile)
		user.Post("/change-password", userHandler.ChangePassword)

		api.Get("/credits", creditHandler.GetCredits)

		api.Post("/translate", translationHandler.Translate)
		api.Get("/translations", translationHandler.ListTranslations)
		api.Get("/translations/:id", translationHandler.GetTranslation)

		api.Post("/ocr", ocrHandler.Extract)

		menus := api.Group("/menus")
		menus.Get("/", menuHandler.List)
		menus.Post("/", menuHandler.Create)
		menus.Get("/:id", menuHandler.Get)
		menus.Put("/:id", menuHandler.Update)
		menus.Delete("/:id", menuHandler.Delete)
		menus.Get("/:id/qrcode", menuHandler.QRCode)

		api.Post("/checkout", paymentHandler.CreateCheckoutSession)
		api.Post("/verify-payment", paymentHandler.VerifyPayment)

		payments := api.Group("/payments")
		payments.Get("/history", paymentHandler.GetPurchaseHistory)
		payments.Post("/checkout/:packageId", paymentHandler.CreatePackageCheckoutSession)

		packages := api.Group("/packages")
		packages.Get("/", creditPackageHandler.GetAllPackages)
		packages.Get("/:id", creditPackageHandler.GetPackageByID)
	}

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			zlog.Fatal("Server stopped", zap.Error(err))
		}
	}()
	zlog.Info("Server started", zap.String("port", cfg.App.Port), zap.String("environment", cfg.App.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
