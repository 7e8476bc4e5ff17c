package main

import (
	"context"

	"donorlink/internal/db"
	"donorlink/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var deactivateCommand = &cli.Command{
	Name:  "deactivate",
	Usage: "Deactivate an account, or reactivate it with --reactivate",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
		&cli.BoolFlag{Name: "reactivate"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		accounts := store.NewAccountRepository(pool)
		account, err := accounts.AccountByEmail(ctx, c.String("email"))
		if err != nil {
			return err
		}

		active := c.Bool("reactivate")
		if err := accounts.SetActive(ctx, account.ID, active); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"account_id": account.ID,
			"active":     active,
		}).Info("account activation updated")
		return nil
	},
}
