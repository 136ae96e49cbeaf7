package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	ListenAddr  string

	// PublicURL is the externally reachable base URL; payment callbacks
	// redirect relative to it.
	PublicURL string

	// AdminToken gates the admin API surface.
	AdminToken string

	OTLPEndpoint string

	// Business identity printed on invoice renditions.
	BusinessName    string
	BusinessAddress string
	BusinessGSTIN   string
	BusinessEmail   string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Gateway GatewayConfig
}

// GatewayConfig carries the payment gateway credentials and endpoint.
type GatewayConfig struct {
	KeyID   string
	Secret  string
	BaseURL string
}

// Load reads configuration from environment variables and an optional
// .env file, then validates it. Missing gateway credentials or public URL
// abort startup rather than degrading to a mock backend.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "gstbill"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),

		PublicURL:  strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_URL")), "/"),
		AdminToken: strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN")),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		BusinessName:    getenv("BUSINESS_NAME", "GST Bill"),
		BusinessAddress: strings.TrimSpace(os.Getenv("BUSINESS_ADDRESS")),
		BusinessGSTIN:   strings.TrimSpace(os.Getenv("BUSINESS_GSTIN")),
		BusinessEmail:   strings.TrimSpace(os.Getenv("BUSINESS_EMAIL")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "gstbill"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		Gateway: GatewayConfig{
			KeyID:   strings.TrimSpace(os.Getenv("GATEWAY_KEY_ID")),
			Secret:  strings.TrimSpace(os.Getenv("GATEWAY_KEY_SECRET")),
			BaseURL: strings.TrimRight(getenv("GATEWAY_BASE_URL", "https://api.razorpay.com"), "/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var missing []string
	if c.Gateway.KeyID == "" {
		missing = append(missing, "GATEWAY_KEY_ID")
	}
	if c.Gateway.Secret == "" {
		missing = append(missing, "GATEWAY_KEY_SECRET")
	}
	if c.PublicURL == "" {
		missing = append(missing, "PUBLIC_URL")
	}
	if c.AdminToken == "" {
		missing = append(missing, "ADMIN_API_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("configuration incomplete: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
