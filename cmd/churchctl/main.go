package main

import (
	"fmt"
	"log"
	"os"

	"church-service/internal/config"
	"church-service/internal/database"
	"church-service/internal/models"
	"church-service/internal/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	root := &cobra.Command{
		Use:   "churchctl",
		Short: "Operations CLI for the church service",
	}
	root.AddCommand(migrateCmd(), restoreImagesCmd(), seedConfigCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database.Connect()
			database.Migrate()
			return nil
		},
	}
}

func restoreImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore-images",
		Short: "Replay stored image blobs onto the filesystem mirrors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database.Connect()

			images := services.NewImageService(database.DB, nil,
				cfg.Storage.UploadDir, cfg.Storage.PersistentDir, cfg.Storage.BuildDir)
			report := images.RestoreMirrors()
			fmt.Printf("restored=%d errors=%d total=%d\n", report.Restored, report.Errors, report.Total)
			for _, detail := range report.Details {
				fmt.Println("  " + detail)
			}
			if report.Errors > 0 {
				return fmt.Errorf("%d blobs failed to restore", report.Errors)
			}
			return nil
		},
	}
}

// seedConfigCmd copies the environment gateway credentials into PaymentConfig
// rows so they can be managed from the admin console afterwards.
func seedConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-config",
		Short: "Seed payment gateway configuration rows from the environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database.Connect()
			db := database.DB

			seeds := []models.PaymentConfig{
				{Name: "mpesa-default", Provider: models.MethodMpesa, BaseURL: cfg.Mpesa.BaseURL,
					APIKey: cfg.Mpesa.APIKey, APISecret: cfg.Mpesa.APISecret, ShortCode: cfg.Mpesa.ShortCode},
				{Name: "tigopesa-default", Provider: models.MethodTigoPesa, BaseURL: cfg.TigoPesa.BaseURL,
					APIKey: cfg.TigoPesa.APIKey, APISecret: cfg.TigoPesa.APISecret, ShortCode: cfg.TigoPesa.ShortCode},
				{Name: "airtel-default", Provider: models.MethodAirtelMoney, BaseURL: cfg.Airtel.BaseURL,
					APIKey: cfg.Airtel.APIKey, APISecret: cfg.Airtel.APISecret},
			}

			for _, seed := range seeds {
				if seed.APIKey == "" {
					fmt.Printf("skipping %s: no credentials in environment\n", seed.Provider)
					continue
				}
				var existing models.PaymentConfig
				if err := db.Where("name = ?", seed.Name).First(&existing).Error; err == nil {
					fmt.Printf("skipping %s: already seeded\n", seed.Name)
					continue
				}
				seed.IsActive = true
				if err := db.Create(&seed).Error; err != nil {
					return err
				}
				fmt.Printf("seeded %s\n", seed.Name)
			}
			return nil
		},
	}
}
