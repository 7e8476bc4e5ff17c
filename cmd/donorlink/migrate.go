package main

import (
	"donorlink/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply or roll back database migrations",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply all pending migrations",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}

				if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
					return err
				}

				logrus.Info("migrations applied")
				return nil
			},
		},
		{
			Name:  "down",
			Usage: "Roll back migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Number of migrations to roll back",
					Value: 1,
				},
			},
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}

				steps := c.Int("steps")
				if err := db.MigrateDown(cfg.DatabaseURL, steps); err != nil {
					return err
				}

				logrus.WithField("steps", steps).Info("migrations rolled back")
				return nil
			},
		},
	},
}
