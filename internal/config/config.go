// Package config содержит логику чтения конфигурации сервиса monyFest.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса monyFest.
type Config struct {
	RunAddress      string `env:"RUN_ADDRESS"`
	DatabaseURI     string `env:"DATABASE_URI"`
	GatewayAddress  string `env:"GATEWAY_ADDRESS"`
	GatewayUsername string `env:"GATEWAY_USERNAME"`
	GatewayPassword string `env:"GATEWAY_PASSWORD"`
	AuthSecret      string `env:"AUTH_SECRET"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envGatewayAddress := cfg.GatewayAddress
	envGatewayUsername := cfg.GatewayUsername
	envGatewayPassword := cfg.GatewayPassword
	envAuthSecret := cfg.AuthSecret

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.GatewayAddress, "g", "", "payment gateway address")
	flag.StringVar(&cfg.GatewayUsername, "gu", "", "payment gateway username")
	flag.StringVar(&cfg.GatewayPassword, "gp", "", "payment gateway password")
	flag.StringVar(&cfg.AuthSecret, "s", "monyfest-secret", "auth cookie secret")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envGatewayAddress != "" {
		cfg.GatewayAddress = envGatewayAddress
	}
	if envGatewayUsername != "" {
		cfg.GatewayUsername = envGatewayUsername
	}
	if envGatewayPassword != "" {
		cfg.GatewayPassword = envGatewayPassword
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
