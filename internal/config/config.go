package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	DBDriver           string `mapstructure:"DB_DRIVER"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTTTLHours        int    `mapstructure:"JWT_TTL_HOURS"`
	Port               string `mapstructure:"PORT"`
	APIPrefix          string `mapstructure:"API_PREFIX"`
	CacheTTLSeconds    int    `mapstructure:"CACHE_TTL_SECONDS"`
	RecentReviewsLimit int    `mapstructure:"RECENT_REVIEWS_LIMIT"`
	SeedAdminName      string `mapstructure:"SEED_ADMIN_NAME"`
	SeedAdminEmail     string `mapstructure:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword  string `mapstructure:"SEED_ADMIN_PASSWORD"`
}

var AppConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("JWT_TTL_HOURS", 24*7)
	v.SetDefault("PORT", "8080")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("RECENT_REVIEWS_LIMIT", 6)
	v.SetDefault("SEED_ADMIN_NAME", "Administrator")
}

// Load reads configuration from a .env file in the working directory and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	setDefaults(v)
	// Unmarshal only sees keys viper knows about, so every key is bound explicitly.
	for _, key := range []string{
		"DATABASE_URL", "DB_DRIVER", "JWT_SECRET", "JWT_TTL_HOURS", "PORT", "API_PREFIX",
		"CACHE_TTL_SECONDS", "RECENT_REVIEWS_LIMIT",
		"SEED_ADMIN_NAME", "SEED_ADMIN_EMAIL", "SEED_ADMIN_PASSWORD",
	} {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if cfg.APIPrefix != "" && !strings.HasPrefix(cfg.APIPrefix, "/") {
		cfg.APIPrefix = "/" + cfg.APIPrefix
	}
	cfg.APIPrefix = strings.TrimSuffix(cfg.APIPrefix, "/")
	return &cfg, nil
}

// LoadConfig loads the configuration into AppConfig and exits on failure.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	AppConfig = cfg
}
