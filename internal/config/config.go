package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	APIKeyEnv      string        `mapstructure:"api_key_env"`
	JWTSecretEnv   string        `mapstructure:"jwt_secret_env"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type SimulationConfig struct {
	MachineCount   int           `mapstructure:"machine_count"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	Speed          float64       `mapstructure:"speed"`
}

type WebSocketConfig struct {
	BroadcastInterval time.Duration `mapstructure:"broadcast_interval"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.shutdown_timeout", "30s")

	viper.SetDefault("auth.api_key_env", "API_KEY")
	viper.SetDefault("auth.jwt_secret_env", "JWT_SECRET")
	viper.SetDefault("auth.access_token_ttl", "60m")

	viper.SetDefault("simulation.machine_count", 10)
	viper.SetDefault("simulation.update_interval", "5s")
	viper.SetDefault("simulation.speed", 1.0)

	viper.SetDefault("websocket.broadcast_interval", "1s")

	// Environment overrides with prefix PLANTSIM_
	viper.AutomaticEnv()
	viper.SetEnvPrefix("PLANTSIM")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// GetAPIKey loads the client API key from the configured environment
// variable.
func (a *AuthConfig) GetAPIKey() string {
	envVar := a.APIKeyEnv
	if envVar == "" {
		envVar = "API_KEY"
	}

	key := os.Getenv(envVar)
	if key == "" {
		// Development fallback, not for production use.
		return "dev-api-key-change-me"
	}
	return key
}

// GetJWTSecret loads the token signing secret from the configured
// environment variable.
func (a *AuthConfig) GetJWTSecret() string {
	envVar := a.JWTSecretEnv
	if envVar == "" {
		envVar = "JWT_SECRET"
	}

	secret := os.Getenv(envVar)
	if secret == "" {
		// Development fallback, not for production use.
		return "dev-secret-change-in-production-min-32-chars"
	}
	return secret
}
