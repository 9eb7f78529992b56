package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"estoquehub/internal/caching"
	"estoquehub/internal/handlers"
	"estoquehub/internal/jobs"
	"estoquehub/internal/jobs/background"
	"estoquehub/internal/middleware"
	"estoquehub/internal/models"
	"estoquehub/internal/repositories"
	"estoquehub/internal/services"
	"estoquehub/pkg/database"
)

const version = "1.0.0"

func main() {
	// Load .env if present; real deployments set the variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using generated secret")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	photoBucket := os.Getenv("MINIO_PHOTO_BUCKET")
	if photoBucket == "" {
		photoBucket = "item-photos"
	}

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	if err := minioSvc.EnsureBucketExists(context.Background(), photoBucket); err != nil {
		log.Printf("WARNING: Failed to ensure photo bucket %s: %v", photoBucket, err)
	}

	// Repositories
	itemRepo := repositories.NewItemRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	movementRepo := repositories.NewMovementRepo(pool)
	maletaRepo := repositories.NewMaletaRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	auditSvc := services.NewAuditLogsService(auditLogsRepo, profileRepo)
	itemSvc := services.NewItemService(itemRepo, auditSvc, cacheSvc)
	categorySvc := services.NewCategoryService(categoryRepo, auditSvc)
	movementSvc := services.NewMovementService(movementRepo, itemRepo, auditSvc, cacheSvc)
	maletaSvc := services.NewMaletaService(maletaRepo, profileRepo, auditSvc, cacheSvc)
	userSvc := services.NewUserService(profileRepo, auditSvc)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)
	itemHandlers := handlers.NewItemHandlers(itemSvc, minioSvc, photoBucket)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc)
	movementHandlers := handlers.NewMovementHandlers(movementSvc)
	maletaHandlers := handlers.NewMaletaHandlers(maletaSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	auditLogsHandlers := handlers.NewAuditLogsHandlers(auditSvc)

	// Echo instance
	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// Protected API routes
	v1 := e.Group("/v1")
	v1.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))
	v1.Use(middleware.ProfileMiddleware(profileRepo))

	operatorUp := middleware.RequireRole(models.RoleAdmin, models.RoleOperator)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// Item routes
	v1.GET("/items", itemHandlers.ListItems)
	v1.GET("/items/search", itemHandlers.SearchItems)
	v1.GET("/items/low-stock", itemHandlers.LowStockItems)
	v1.GET("/items/barcode/:barcode", itemHandlers.GetItemByBarcode)
	v1.GET("/items/:id", itemHandlers.GetItem)
	v1.POST("/items", itemHandlers.CreateItem, operatorUp)
	v1.PUT("/items/:id", itemHandlers.UpdateItem, operatorUp)
	v1.DELETE("/items/:id", itemHandlers.DeleteItem, adminOnly)
	v1.POST("/items/:id/photo", itemHandlers.UploadItemPhoto, operatorUp)

	// Category routes
	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.GET("/categories/:id", categoryHandlers.GetCategory)
	v1.POST("/categories", categoryHandlers.CreateCategory, operatorUp)
	v1.PUT("/categories/:id", categoryHandlers.UpdateCategory, operatorUp)
	v1.DELETE("/categories/:id", categoryHandlers.DeleteCategory, adminOnly)

	// Movement ledger routes
	v1.GET("/movements", movementHandlers.ListMovements)
	v1.GET("/movements/aggregate", movementHandlers.AggregateMovements)
	v1.POST("/movements", movementHandlers.CreateMovement, operatorUp)

	// Maleta routes
	v1.GET("/maletas", maletaHandlers.ListMaletas)
	v1.GET("/maletas/stats", maletaHandlers.GetMaletaStats)
	v1.GET("/maletas/:id", maletaHandlers.GetMaleta)
	v1.POST("/maletas", maletaHandlers.CreateMaleta, operatorUp)
	v1.POST("/maletas/:id/return", maletaHandlers.ReturnMaleta, operatorUp)

	// Admin routes
	v1.GET("/users", userHandlers.ListUsers, adminOnly)
	v1.GET("/users/:id", userHandlers.GetUser, adminOnly)
	v1.POST("/users", userHandlers.CreateUser, adminOnly)
	v1.PUT("/users/:id", userHandlers.UpdateUser, adminOnly)
	v1.DELETE("/users/:id", userHandlers.DeleteUser, adminOnly)
	v1.GET("/audit-logs", auditLogsHandlers.ListAuditLogs, adminOnly)

	// Background jobs
	lowStockSvc := jobs.NewLowStockAlertService(itemRepo)
	scheduler := background.NewJobScheduler(maletaSvc, lowStockSvc)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("EstoqueHub server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
