package main

import (
	"encoding/base64"
	"strings"
	"testing"

	"donorlink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/donorlink")
	t.Setenv("ENVIRONMENT", "development")

	c, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, uint(8080), c.ServerPort)
	assert.Equal(t, 56, c.EligibilityIntervalDays)
	assert.Equal(t, 604800, c.SessionMaxAgeSec)

	for _, k := range []string{c.CookieHashKey, c.CookieBlockKey, c.SessionSigningKey} {
		raw, err := base64.StdEncoding.DecodeString(k)
		require.NoError(t, err)
		assert.Len(t, raw, 32)
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := loadConfig()
	assert.EqualError(t, err, "set DATABASE_URL")
}

func TestLoadConfig_ProductionRequiresKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/donorlink")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("COOKIE_HASH_KEY", "")

	_, err := loadConfig()
	assert.EqualError(t, err, "set COOKIE_HASH_KEY")
}

func TestLoadConfig_IntervalOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/donorlink")
	t.Setenv("ELIGIBILITY_INTERVAL_DAYS", "84")

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 84, c.EligibilityIntervalDays)
}

func TestNewLogger(t *testing.T) {
	logger := newLogger(&types.Config{LogLevel: "debug"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger = newLogger(&types.Config{LogLevel: "chatty"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewSuperuser(t *testing.T) {
	account, err := newSuperuser(" admin ", "Admin@Example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "admin", account.Username)
	assert.Equal(t, "admin@example.com", account.Email)
	assert.True(t, account.IsStaff)
	assert.True(t, account.IsSuperuser())

	_, err = newSuperuser("admin", "nope", "s3cret!")
	assert.Error(t, err)

	_, err = newSuperuser("admin", "admin@example.com", "123")
	assert.Error(t, err)

	_, err = newSuperuser("admin", "admin@example.com", strings.Repeat("x", 73))
	assert.Error(t, err)
}
