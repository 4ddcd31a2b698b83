package app

import (
	"time"

	env "github.com/Netflix/go-env"
)

// Config holds runtime wiring options, loaded from the environment.
// Cobra flags may override Home and VaultBackend.
type Config struct {
	// Home is the data directory, e.g. $HOME/.caretalk.
	Home string `env:"CARETALK_HOME"`
	// VaultBackend selects the secure store: "badger" (durable native
	// backend) or "file" (portable profile). Chosen once at startup.
	VaultBackend string `env:"CARETALK_VAULT_BACKEND,default=badger"`
	// MasterKey is the hex-encoded content master key. When empty a key
	// is generated and persisted under Home on first run.
	MasterKey string `env:"CARETALK_MASTER_KEY"`

	TokenSecret string        `env:"CARETALK_TOKEN_SECRET,default=caretalk-dev-secret"`
	TokenTTL    time.Duration `env:"CARETALK_TOKEN_TTL,default=24h"`

	// DirectoryLatency mimics the round trip of a real account backend.
	DirectoryLatency time.Duration `env:"CARETALK_DIRECTORY_LATENCY,default=0s"`

	// SMTP settings for the reset-mail notifier. With no host configured
	// reset requests are logged instead.
	SMTPHost     string `env:"CARETALK_SMTP_HOST"`
	SMTPPort     int    `env:"CARETALK_SMTP_PORT,default=587"`
	SMTPUsername string `env:"CARETALK_SMTP_USERNAME"`
	SMTPPassword string `env:"CARETALK_SMTP_PASSWORD"`
	SMTPFrom     string `env:"CARETALK_SMTP_FROM,default=no-reply@caretalk.local"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
