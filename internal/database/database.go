package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"church-service/internal/models"
)

var DB *gorm.DB

func Connect() {
	var err error
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
	}

	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	log.Println("Database connection established")
}

func Migrate() {
	if err := MigrateWith(DB); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	log.Println("Database migration completed")
}

// MigrateWith runs AutoMigrate on an explicit handle so test suites can
// migrate their own sqlite databases.
func MigrateWith(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Branch{},
		&models.PaymentConfig{},
		&models.Donation{},
		&models.LedgerEntry{},
		&models.CallbackLog{},
		&models.ImageBlob{},
	)
}
