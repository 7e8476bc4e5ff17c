package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// HMAC key for session tokens (base64 encoded)
	SessionSigningKey string `envconfig:"SESSION_SIGNING_KEY"`
	SessionMaxAgeSec  int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`

	// Minimum number of days between a recorded donation and the donor
	// becoming available again.
	EligibilityIntervalDays int `envconfig:"ELIGIBILITY_INTERVAL_DAYS" default:"56"`

	LoginRatePerMin int `envconfig:"LOGIN_RATE_PER_MIN" default:"10"`
	LoginBurst      int `envconfig:"LOGIN_BURST" default:"5"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
