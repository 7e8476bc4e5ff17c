package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"donorlink/pkg/types"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if err := ensureKeys(c); err != nil {
		return nil, err
	}

	return c, nil
}

// ensureKeys fills missing signing keys with random ones outside production.
// Sessions issued with generated keys do not survive a restart.
func ensureKeys(c *types.Config) error {
	keys := []struct {
		name  string
		value *string
		size  int
	}{
		{"COOKIE_HASH_KEY", &c.CookieHashKey, 32},
		{"COOKIE_BLOCK_KEY", &c.CookieBlockKey, 32},
		{"SESSION_SIGNING_KEY", &c.SessionSigningKey, 32},
	}

	for _, k := range keys {
		if *k.value != "" {
			continue
		}

		if c.IsProduction() {
			return fmt.Errorf("set %s", k.name)
		}

		b := make([]byte, k.size)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate %s: %w", k.name, err)
		}
		*k.value = base64.StdEncoding.EncodeToString(b)

		logrus.WithField("key", k.name).Warn("generated ephemeral key, set it in the environment to keep sessions across restarts")
	}

	return nil
}

func newLogger(c *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithField("log_level", c.LogLevel).Warn("unknown log level, falling back to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
