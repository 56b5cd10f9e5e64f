package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Catalog     CatalogConfig
	Admin       AdminConfig
	LogLevel    string
	Templates   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// CatalogConfig controls how the engine talks to the pre-existing catalog
// tables it does not own.
type CatalogConfig struct {
	ArticleTable string // defaults to "articulos"; never migrated by this service
	PriceTable   string // tariff price override table, owned by this service
	TariffTable  string // tariff catalog table, owned by this service
}

// AdminConfig carries dashboard auth settings. The dashboard is admin-only;
// requests present the admin key as a Bearer token.
type AdminConfig struct {
	APIKeyHash string // bcrypt hash of the admin API key; empty disables auth (dev only)
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "crmfarma"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Catalog: CatalogConfig{
			ArticleTable: getEnvOrViper("CATALOG_ARTICLE_TABLE", "articulos"),
			PriceTable:   getEnvOrViper("TARIFF_PRICE_TABLE", "tarifas_clientes_precios"),
			TariffTable:  getEnvOrViper("TARIFF_TABLE", "tarifas_clientes"),
		},
		Admin: AdminConfig{
			APIKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
		LogLevel:  getEnvOrViper("LOG_LEVEL", "info"),
		Templates: getEnvOrViper("TEMPLATE_GLOB", "templates/*.html"),
	}

	// Validate required fields
	if cfg.Database.DBName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	if cfg.Environment == "production" && cfg.Admin.APIKeyHash == "" {
		return nil, fmt.Errorf("ADMIN_API_KEY_HASH is required in production")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
