package main

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"donorlink/internal/auth"
	"donorlink/internal/db"
	"donorlink/internal/store"
	"donorlink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var createSuperuserCommand = &cli.Command{
	Name:  "createsuperuser",
	Usage: "Create an administrator account",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "username", Required: true},
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SUPERUSER_PASSWORD"}},
	},
	Action: func(c *cli.Context) error {
		account, err := newSuperuser(c.String("username"), c.String("email"), c.String("password"))
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		passwords, err := auth.NewPasswordHasher(cfg.BcryptCost)
		if err != nil {
			return err
		}

		account.PasswordHash, err = passwords.Hash(c.String("password"))
		if err != nil {
			return err
		}

		ctx := context.Background()
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		err = store.NewAccountRepository(pool).Create(ctx, account)
		switch {
		case errors.Is(err, types.ErrUsernameTaken), errors.Is(err, types.ErrEmailTaken):
			return fmt.Errorf("cannot create superuser: %w", err)
		case err != nil:
			return err
		}

		logrus.WithFields(logrus.Fields{
			"account_id": account.ID,
			"username":   account.Username,
		}).Info("superuser created")
		return nil
	},
}

// newSuperuser validates the flags and builds the account without a
// password hash.
func newSuperuser(username, email, password string) (*types.Account, error) {
	username = strings.TrimSpace(username)
	email = store.NormalizeEmail(email)

	if username == "" || len(username) > 30 {
		return nil, fmt.Errorf("username must be between 1 and 30 characters")
	}

	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("invalid email address %q", email)
	}

	if len(password) < auth.MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters long", auth.MinPasswordLength)
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, fmt.Errorf("password must be at most %d bytes", auth.MaxPasswordLength)
	}

	return &types.Account{
		Username: username,
		Email:    email,
		IsActive: true,
		IsStaff:  true,
		IsAdmin:  true,
	}, nil
}
