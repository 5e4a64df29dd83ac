package main

import (
	"log"

	"church-service/internal/config"
	"church-service/internal/database"
	"church-service/internal/handlers"
	"church-service/internal/middleware"
	"church-service/internal/services"
	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Redis/Asynq Client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisURL})
	defer asynqClient.Close()

	// Init Services
	httpClient := common.NewClient(0, 0)
	helperService := services.NewHelperService(db, cfg)
	donationService := services.NewDonationService(db, asynqClient)

	mpesaService := services.NewMpesaService(db, helperService, donationService, httpClient)
	tigoPesaService := services.NewTigoPesaService(db, helperService, donationService, httpClient)
	airtelService := services.NewAirtelService(db, helperService, donationService, httpClient)

	paymentService := services.NewPaymentService(db, donationService, mpesaService, tigoPesaService, airtelService)
	imageService := services.NewImageService(db, asynqClient,
		cfg.Storage.UploadDir, cfg.Storage.PersistentDir, cfg.Storage.BuildDir)

	// Replay missing mirror files from the database before serving traffic
	report := imageService.RestoreMirrors()
	log.Printf("boot image restore: restored=%d errors=%d total=%d",
		report.Restored, report.Errors, report.Total)
	imageService.StartScheduler()

	// Handlers
	donationHandler := handlers.NewDonationHandler(donationService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	uploadHandler := handlers.NewUploadHandler(imageService)
	financeHandler := handlers.NewFinanceHandler(db)
	branchHandler := handlers.NewBranchHandler(db)
	configHandler := handlers.NewPaymentConfigHandler(db)

	// Initialize Gin
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Church service API"})
	})

	// Public routes
	r.POST("/donations", donationHandler.Create)
	r.POST("/payments/:method", paymentHandler.Initiate)
	r.POST("/payments/:method/callback", paymentHandler.Callback)
	r.GET("/payments/verify/:method/:id", paymentHandler.Verify)
	r.GET("/payments/bank-details", paymentHandler.BankDetails)
	r.GET("/uploads/:filename", uploadHandler.Serve)
	r.GET("/upload/:filename", uploadHandler.Serve)
	r.GET("/branches", branchHandler.List)

	// Finance routes
	finance := r.Group("/", middleware.Auth(cfg.Auth.JWTSecret), middleware.RequireRole(middleware.RoleFinance))
	{
		finance.GET("/donations", donationHandler.List)
		finance.GET("/donations/stats", donationHandler.Stats)
		finance.GET("/donations/:id", donationHandler.Get)
		finance.PUT("/donations/:id/status", donationHandler.UpdateStatus)
		finance.GET("/finance", financeHandler.List)
		finance.POST("/finance", financeHandler.Create)
		finance.PUT("/finance/:id", financeHandler.Update)
		finance.DELETE("/finance/:id", financeHandler.Delete)
	}

	// Admin routes
	admin := r.Group("/", middleware.Auth(cfg.Auth.JWTSecret), middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.POST("/upload", uploadHandler.Upload)
		admin.POST("/upload/restore", uploadHandler.Restore)
		admin.DELETE("/upload/:filename", uploadHandler.Purge)
		admin.DELETE("/donations/:id", donationHandler.Delete)
		admin.POST("/branches", branchHandler.Create)
		admin.PUT("/branches/:id", branchHandler.Update)
		admin.DELETE("/branches/:id", branchHandler.Delete)
		admin.GET("/payment-configs", configHandler.List)
		admin.POST("/payment-configs", configHandler.Upsert)
	}

	log.Printf("HTTP Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
