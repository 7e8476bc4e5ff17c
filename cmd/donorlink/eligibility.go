package main

import (
	"context"
	"errors"
	"time"

	"donorlink/internal/db"
	"donorlink/internal/eligibility"
	"donorlink/internal/store"
	"donorlink/internal/utils"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

type eligibilityReport struct {
	Email              string
	Donor              string
	BloodType          string
	Available          bool
	LastDonation       string
	NextEligible       string
	CanBecomeAvailable bool
	Reason             string
}

var eligibilityCommand = &cli.Command{
	Name:  "eligibility",
	Usage: "Show whether a donor may be marked available today",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
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

		account, err := store.NewAccountRepository(pool).AccountByEmail(ctx, c.String("email"))
		if err != nil {
			return err
		}

		profile, err := store.NewProfileRepository(pool).ProfileByAccountID(ctx, account.ID)
		if err != nil {
			return err
		}

		policy := eligibility.NewPolicy(cfg.EligibilityIntervalDays)
		report := eligibilityReport{
			Email:        account.Email,
			Donor:        profile.FullName(),
			BloodType:    profile.BloodType,
			Available:    profile.Availability,
			LastDonation: utils.FormatDate(profile.LastDonationDate),
		}

		if profile.LastDonationDate != nil {
			report.NextEligible = policy.NextEligibleDate(*profile.LastDonationDate).Format(time.DateOnly)
		}

		_, err = policy.Evaluate(true, profile.LastDonationDate, eligibility.Date(time.Now()))
		var waitErr *eligibility.WaitError
		switch {
		case err == nil:
			report.CanBecomeAvailable = true
		case errors.As(err, &waitErr), errors.Is(err, eligibility.ErrFutureDonation):
			report.Reason = err.Error()
		default:
			return err
		}

		printer := pp.New()
		printer.SetOutput(c.App.Writer)
		printer.SetColoringEnabled(false)
		_, err = printer.Println(report)
		return err
	},
}
