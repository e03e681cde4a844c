package main

import (
	"context"
	"os"

	"sushishop/internal/config"
	"sushishop/internal/database"
	"sushishop/internal/repository"
	"sushishop/internal/seed"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.NewConnection(cfg.DSN(), false)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	seeder := seed.New(
		repository.NewIngredientRepository(db),
		repository.NewProductRepository(db),
		repository.NewUserRepository(db),
	)

	ctx := log.Logger.WithContext(context.Background())
	if err := seeder.Run(ctx, seed.Admin{Email: cfg.AdminEmail, Password: cfg.AdminPassword}); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Msg("database seeded")
}
