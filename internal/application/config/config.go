package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9100"`

	// AllowedOrigins is the cross-origin allow-list for both the REST API
	// and the WebSocket upgrade check. Ignored when Debug is set.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173"`

	StunURLs []string `env:"STUN_URLS" envDefault:"stun:stun.l.google.com:19302"`

	Turn TurnConfig
}

type TurnConfig struct {
	Host string `env:"TURN_HOST"`

	// Secret is coturn's static-auth-secret, used to mint short-lived
	// credentials for clients.
	Secret string `env:"TURN_SECRET"`
}

func (t TurnConfig) Enabled() bool {
	return t.Host != "" && t.Secret != ""
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &c, nil
}
