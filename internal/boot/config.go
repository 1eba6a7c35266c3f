package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	ModeAuto     = "auto"
	ModeAssisted = "assisted"
)

type Config struct {
	Env     string `env:"ENV,default=dev"`
	DataDir string `env:"DATA_DIR"`
	Server  struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
		Origins     string `env:"ALLOWED_ORIGINS,default=*"`
	}
	// Mode selects the dispatch strategy once at startup: "auto" sends
	// replies through the SMS gateway, "assisted" queues tap-to-send
	// prompts for the device.
	Mode          string        `env:"MODE,default=assisted"`
	AdminSecret   string        `env:"ADMIN_SECRET,required"`
	PairingCode   string        `env:"PAIRING_CODE,required"`
	CallLogWindow time.Duration `env:"CALL_LOG_WINDOW,default=60s"`
	TemplatesFile string        `env:"TEMPLATES_FILE"`
	Gateway       struct {
		URL     string        `env:"SMS_GATEWAY_URL"`
		APIKey  string        `env:"SMS_GATEWAY_API_KEY"`
		Timeout time.Duration `env:"SMS_GATEWAY_TIMEOUT,default=10s"`
	}
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Mode != ModeAuto && c.Mode != ModeAssisted {
		return fmt.Errorf("unknown mode %q: must be %q or %q", c.Mode, ModeAuto, ModeAssisted)
	}
	if c.Mode == ModeAuto && c.Gateway.URL == "" {
		return fmt.Errorf("auto mode requires SMS_GATEWAY_URL")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

func (c *Config) DataDirectory() string {
	return c.DataDir
}
