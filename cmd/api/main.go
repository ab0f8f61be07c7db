package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/auth"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/httpserver"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/logger"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/storage"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Company{}, &models.Product{},
		&models.XMLUpload{}, &models.Report{}, &models.Session{}, &models.AuditLog{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedDefaultAdmin(db, lg)

	store, err := newObjectStore(lg)
	if err != nil {
		lg.Fatalw("storage init failed", "error", err)
	}

	router := httpserver.NewRouter(db, store, lg)
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	lg.Infow("listening", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}

// newObjectStore picks MinIO when configured, local disk otherwise.
func newObjectStore(lg *zap.SugaredLogger) (storage.ObjectStore, error) {
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		bucket := os.Getenv("MINIO_BUCKET")
		if bucket == "" {
			bucket = "nfe-uploads"
		}
		lg.Infow("using minio storage", "endpoint", endpoint, "bucket", bucket)
		return storage.NewMinioStore(
			endpoint,
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			bucket,
			os.Getenv("MINIO_USE_SSL") == "true",
		)
	}
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	lg.Infow("using disk storage", "dir", dir)
	return storage.NewDiskStore(dir)
}

func seedDefaultAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	email := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count)
	if count > 0 {
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		lg.Errorw("seed admin hash failed", "error", err)
		return
	}
	u := models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Administrador",
		IsAdmin:      true,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&u).Error; err != nil {
		lg.Errorw("seed admin failed", "error", err)
		return
	}
	lg.Infow("seeded default admin", "email", email)
}
