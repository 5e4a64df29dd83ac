package main

import (
	"log"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"church-service/internal/config"
	"church-service/internal/consumers"
	"church-service/internal/database"
	"church-service/internal/services"
	"church-service/internal/worker"
)

func main() {
	if err := godotenv.Load("../../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	database.Connect()
	db := database.DB

	// The worker owns the mirror writes, so its image service runs without a
	// task client of its own.
	imageService := services.NewImageService(db, nil,
		cfg.Storage.UploadDir, cfg.Storage.PersistentDir, cfg.Storage.BuildDir)
	processor := consumers.NewNotificationProcessor(db, imageService)

	log.Println("Starting Asynq Worker...")
	worker.StartWorker(asynq.RedisClientOpt{Addr: cfg.RedisURL}, processor)
}
