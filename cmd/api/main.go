package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"wqsolutions/internal/api"
	"wqsolutions/internal/auth"
	"wqsolutions/internal/config"
	"wqsolutions/internal/database"
	"wqsolutions/internal/storage"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger.Info("api bootstrapped",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"sslmode", cfg.Database.SSLMode,
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	logger.Info("database connection ready")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	logger.Info("database migrated")

	privateKey, err := os.ReadFile(cfg.Auth.PrivateKeyFile)
	if err != nil {
		log.Fatalf("read private key: %v", err)
	}
	publicKey, err := os.ReadFile(cfg.Auth.PublicKeyFile)
	if err != nil {
		log.Fatalf("read public key: %v", err)
	}
	authService, err := auth.NewService(privateKey, publicKey, cfg.Auth.AccessTTL())
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		log.Fatalf("create uploads dir: %v", err)
	}
	store := storage.New(afero.NewOsFs(), cfg.Uploads.Dir, cfg.Uploads.BaseURL)

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
	})

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, db, authService, redisClient, logger, store, cfg)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", "address", address)
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
