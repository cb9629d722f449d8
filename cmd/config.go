package cmd

import "fmt"

// Config carries every externally supplied setting of the app. Values come
// from the environment (see cmd/app/main.go); zero values fall back to the
// defaults baked into the components themselves.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// EphemeralBackend selects the ephemeral store: "memory" (default,
	// single instance) or "redis" (multi instance).
	EphemeralBackend string
	RedisAddr        string

	PresenceTTLSeconds int
	MaxIdleSeconds     int
	OutboxCapacity     int

	BaseFeeCents   int64
	PerKmRateCents int64

	// Per-platform webhook signing secrets. A platform without a secret
	// rejects every delivery.
	WebhookSecretIfood    string
	WebhookSecretRappi    string
	WebhookSecretUberEats string
}

// DSN renders the PostgreSQL connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
