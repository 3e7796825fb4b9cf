// seed prepares an empty database: it creates the indexes, a default admin
// account and the default product categories. Running it again is harmless.
//
// Usage: SEED_ADMIN_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
	"github.com/retailpos/pos-system/internal/core/service"
	mongodb "github.com/retailpos/pos-system/internal/infrastructure/db/mongo"
	"github.com/retailpos/pos-system/pkg/logger"
)

type seedConfig struct {
	MongoURI      string        `env:"MONGO_URI,           default=mongodb://localhost:27017/?replicaSet=rs0"`
	MongoDatabase string        `env:"MONGO_DB,            default=pos_system"`
	MongoTimeout  time.Duration `env:"MONGO_TIMEOUT,       default=10s"`
	AdminUsername string        `env:"SEED_ADMIN_USERNAME, default=admin"`
	AdminEmail    string        `env:"SEED_ADMIN_EMAIL,    default=admin@pos.local"`
	AdminPassword string        `env:"SEED_ADMIN_PASSWORD, required"`
	LogLevel      string        `env:"LOG_LEVEL,           default=info"`
}

func main() {
	ctx := context.Background()

	var cfg seedConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		panic("load config: " + err.Error())
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "pos-seed"})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
		Timeout:  cfg.MongoTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}
	log.Info().Msg("indexes ensured")

	users := service.NewUserService(mongodb.NewTxRunner(client, db), mongodb.NewUserRepository(db), log)
	catalog := service.NewCatalogService(mongodb.NewCategoryRepository(db), mongodb.NewSupplierRepository(db), log)

	if err := seedAdmin(ctx, users, cfg, log); err != nil {
		log.Error().Err(err).Msg("seed admin")
		os.Exit(1)
	}
	if err := seedCategories(ctx, catalog, log); err != nil {
		log.Error().Err(err).Msg("seed categories")
		os.Exit(1)
	}
	log.Info().Msg("seed complete")
}

func seedAdmin(ctx context.Context, users ports.UserService, cfg seedConfig, log zerolog.Logger) error {
	_, err := users.CreateUser(ctx, ports.CreateUserInput{
		Username:  cfg.AdminUsername,
		Email:     cfg.AdminEmail,
		Password:  cfg.AdminPassword,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      domain.RoleAdmin,
		CreatedBy: "seed",
	})
	switch {
	case errors.Is(err, domain.ErrUserExists):
		log.Info().Str("username", cfg.AdminUsername).Msg("admin already present")
		return nil
	case err != nil:
		return err
	}
	log.Info().Str("username", cfg.AdminUsername).Msg("admin created")
	return nil
}

func seedCategories(ctx context.Context, catalog ports.CatalogService, log zerolog.Logger) error {
	for _, name := range domain.DefaultCategories {
		_, err := catalog.CreateCategory(ctx, ports.CreateCategoryInput{Name: name, CreatedBy: "seed"})
		if err != nil && !errors.Is(err, domain.ErrCategoryExists) {
			return err
		}
	}
	log.Info().Int("count", len(domain.DefaultCategories)).Msg("categories ensured")
	return nil
}
