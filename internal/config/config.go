/**
 * @description
 * This package handles configuration management for the ledger service. It
 * uses Viper to read settings from environment variables with an optional
 * .env file, providing defaults for everything that can safely default.
 * There are no ambient globals: the loaded Config is injected into each
 * component at startup.
 *
 * @dependencies
 * - github.com/spf13/viper: Configuration library.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the ledger service.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`

	SearchAPIBaseURL string `mapstructure:"SEARCH_API_BASE_URL"`
	SearchAPIKey     string `mapstructure:"SEARCH_API_KEY"`

	JWTSecretKey  string `mapstructure:"JWT_SECRET_KEY"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS"`

	ResetTokenTTLMinutes    int    `mapstructure:"RESET_TOKEN_TTL_MINUTES"`
	ResetTokenSweepSchedule string `mapstructure:"RESET_TOKEN_SWEEP_SCHEDULE"`

	TransferRateLimitPerMinute int `mapstructure:"TRANSFER_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables, optionally
// seeded by a .env file at the given path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "ledger:rate_limit")
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("RESET_TOKEN_TTL_MINUTES", 30)
	viper.SetDefault("RESET_TOKEN_SWEEP_SCHEDULE", "@hourly")
	viper.SetDefault("TRANSFER_RATE_LIMIT_PER_MINUTE", 30)

	// Bind explicitly so every key appears in Unmarshal even when it is only
	// set in the process environment.
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("SEARCH_API_BASE_URL")
	_ = viper.BindEnv("SEARCH_API_KEY")
	_ = viper.BindEnv("JWT_SECRET_KEY")
	_ = viper.BindEnv("TOKEN_TTL_HOURS")
	_ = viper.BindEnv("RESET_TOKEN_TTL_MINUTES")
	_ = viper.BindEnv("RESET_TOKEN_SWEEP_SCHEDULE")
	_ = viper.BindEnv("TRANSFER_RATE_LIMIT_PER_MINUTE")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// PORT (platform convention) wins over SERVER_PORT when set.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	if config.TokenTTLHours <= 0 {
		config.TokenTTLHours = 24
	}
	if config.ResetTokenTTLMinutes <= 0 {
		config.ResetTokenTTLMinutes = 30
	}
	if strings.TrimSpace(config.ResetTokenSweepSchedule) == "" {
		config.ResetTokenSweepSchedule = "@hourly"
	}
	if config.TransferRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative transfer rate limit configured; disabling\" limit=%d", config.TransferRateLimitPerMinute)
		config.TransferRateLimitPerMinute = 0
	}

	return
}
