package main

import (
	"context"
	"fmt"
	"time"

	"donorlink/internal/auth"
	"donorlink/internal/db"
	"donorlink/internal/eligibility"
	"donorlink/internal/seed"
	"donorlink/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo donors and donation requests",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)
		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("Connected to database")

		passwords, err := auth.NewPasswordHasher(cfg.BcryptCost)
		if err != nil {
			return err
		}

		seeder := seed.NewSeeder(
			logger,
			store.NewAccountRepository(pool),
			store.NewProfileRepository(pool),
			store.NewDonationRequestRepository(pool),
			passwords,
			eligibility.NewPolicy(cfg.EligibilityIntervalDays),
		)

		if err := seeder.Run(ctx, time.Now()); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}

		logger.WithField("password", seed.DemoPassword).Info("demo accounts ready")
		return nil
	},
}
