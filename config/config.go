// config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Postgres      DatabaseConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	Nats          NatsConfiguration
	Billing       BillingConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	URL string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr            string
	DefaultCacheTTL string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

// NatsConfiguration stores data for the NATS connection
type NatsConfiguration struct {
	URL string
}

// BillingConfiguration stores billing webhook settings
type BillingConfiguration struct {
	WebhookSecret string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("postgres.url", "postgres://localhost:5432/controlroom")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("redis.defaultCacheTTL", "10m")
	viper.SetDefault("onboarding.seenTTL", "4320h") // ~180 days
	viper.SetDefault("billing.eventRetention", "720h")
	viper.SetDefault("billing.webhookRatePerSec", 20.0)
	viper.SetDefault("billing.webhookBurst", 40)
	viper.SetDefault("rateLimit.requests", 100)
	viper.SetDefault("rateLimit.durationSeconds", 60)
	viper.SetDefault("auth.jwksUrl", "http://localhost:8081/.well-known/jwks.json")
	viper.SetDefault("log.dirPath", "logging")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 retrieves a float64 value from the configuration
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// Set overrides a configuration value, used by tests
func Set(key string, value interface{}) {
	viper.Set(key, value)
}
