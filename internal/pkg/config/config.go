package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, gateway credentials)
// - default: Values common across all environments (timeouts, currency, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Checkout CheckoutConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Dhaka"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Guest-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Dhaka"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"21600"` // 6*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// GatewayConfig holds credentials for the hosted payment page provider.
// Sandbox selects the sandbox endpoint; CallbackBaseURL is the public base
// the gateway redirects back to (/payment/success etc. are appended).
type GatewayConfig struct {
	StoreID         string        `envconfig:"GATEWAY_STORE_ID" required:"true"`
	StorePassword   string        `envconfig:"GATEWAY_STORE_PASSWORD" required:"true"`
	Sandbox         bool          `envconfig:"GATEWAY_SANDBOX" default:"true"`
	LiveBaseURL     string        `envconfig:"GATEWAY_LIVE_BASE_URL" default:"https://securepay.example.com"`
	SandboxBaseURL  string        `envconfig:"GATEWAY_SANDBOX_BASE_URL" default:"https://sandbox.securepay.example.com"`
	CallbackBaseURL string        `envconfig:"GATEWAY_CALLBACK_BASE_URL" required:"true"`
	Timeout         time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"30s"`
}

func (c *GatewayConfig) BaseURL() string {
	if c.Sandbox {
		return c.SandboxBaseURL
	}
	return c.LiveBaseURL
}

type CheckoutConfig struct {
	Currency         string        `envconfig:"CHECKOUT_CURRENCY" default:"BDT"`
	TaxRateBps       int64         `envconfig:"CHECKOUT_TAX_RATE_BPS" default:"0"`
	DeliveryCacheTTL time.Duration `envconfig:"CHECKOUT_DELIVERY_CACHE_TTL" default:"5m"`
	DeliveryCacheMax int           `envconfig:"CHECKOUT_DELIVERY_CACHE_MAX" default:"256"`
}

type NotifyConfig struct {
	SMTPAddr     string        `envconfig:"NOTIFY_SMTP_ADDR" default:"localhost:25"`
	SMTPFrom     string        `envconfig:"NOTIFY_SMTP_FROM" default:"orders@example.com"`
	SMSEndpoint  string        `envconfig:"NOTIFY_SMS_ENDPOINT" default:""`
	SMSAPIKey    string        `envconfig:"NOTIFY_SMS_API_KEY" default:""`
	PollInterval time.Duration `envconfig:"NOTIFY_POLL_INTERVAL" default:"10s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Dhaka",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Dhaka",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 21600,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "24h",
		},
		Gateway: GatewayConfig{
			StoreID:         "teststore",
			StorePassword:   "testpass",
			Sandbox:         true,
			CallbackBaseURL: "http://localhost:8889",
			Timeout:         5 * time.Second,
		},
		Checkout: CheckoutConfig{
			Currency:         "BDT",
			TaxRateBps:       0,
			DeliveryCacheTTL: time.Minute,
			DeliveryCacheMax: 64,
		},
		Notify: NotifyConfig{
			SMTPAddr:     "localhost:2525",
			SMTPFrom:     "orders@test.local",
			PollInterval: time.Second,
		},
	}
}
