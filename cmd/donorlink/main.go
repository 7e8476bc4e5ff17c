package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "donorlink",
		Usage: "Blood donor coordination web app",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			createSuperuserCommand,
			deactivateCommand,
			eligibilityCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
