package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"authkit/internal/api"
	"authkit/internal/config"
	"authkit/internal/events"
	"authkit/internal/repository"
	"authkit/internal/s3"
	"authkit/internal/service"
	"authkit/internal/token"
	"authkit/internal/tracing"
	_ "authkit/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler("authkit")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracer, err := tracing.InitTracerProvider("authkit")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations(cfg)
		return
	}

	db := connectDB(cfg)
	defer db.Close()

	eventPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	filePresigner, err := s3.NewFilePresigner(context.Background(), cfg.S3)
	if err != nil {
		log.Fatalf("Failed to configure S3 presigner: %v", err)
	}

	userRepo := repository.NewPostgresUserRepository(db)
	accountRepo := repository.NewPostgresAccountRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	verificationRepo := repository.NewPostgresVerificationTokenRepository(db)

	tokens := token.NewManager(cfg.AuthSecret)
	providers := service.NewProviders(cfg)

	authService := service.NewAuthService(userRepo, sessionRepo, verificationRepo, tokens, eventPublisher)
	oauthService := service.NewOAuthService(userRepo, accountRepo, sessionRepo, eventPublisher)

	providerNames := []string{"credentials"}
	for name := range providers {
		providerNames = append(providerNames, name)
	}

	authHandler := api.NewAuthHandler(authService, tokens, providerNames)
	oauthHandler := api.NewOAuthHandler(providers, oauthService, tokens)
	userHandler := api.NewUserHandler(authService, filePresigner)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())
	app.Use(api.EdgeGate(tokens))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "authkit"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api.RegisterPages(app)

	authRoutes := app.Group("/api/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/signin", authHandler.SignIn)
	authRoutes.Post("/signout", authHandler.SignOut)
	authRoutes.Get("/session", authHandler.Session)
	authRoutes.Get("/providers", authHandler.Providers)
	authRoutes.Get("/csrf", authHandler.Csrf)
	authRoutes.Get("/verify", authHandler.Verify)
	authRoutes.Get("/oauth/:provider", oauthHandler.Start)
	authRoutes.Get("/oauth/:provider/callback", oauthHandler.Callback)

	userRoutes := app.Group("/api/user")
	userRoutes.Use(api.AuthMiddleware(tokens))
	userRoutes.Get("/me", userHandler.Me)
	userRoutes.Get("/avatar-upload", userHandler.GetAvatarUploadURL)
	userRoutes.Patch("/avatar", userHandler.UpdateAvatar)

	log.Printf("Listening authkit on port %s", cfg.AppPort)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}

func connectDB(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations(cfg *config.Config) {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
