package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server Settings
	AppPort        string        `envconfig:"PORT" default:"8080"`
	HOST           string        `envconfig:"HOST" default:"0.0.0.0"`
	Env            string        `envconfig:"APP_ENV" default:"development"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	UploadDir      string        `envconfig:"UPLOAD_DIR" default:"./uploads"`
	DefaultCampus  string        `envconfig:"DEFAULT_CAMPUS" default:"IIT Kanpur"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	ResetDB     bool   `envconfig:"DB_RESET" default:"false"`
	SeedDB      bool   `envconfig:"DB_SEED" default:"false"`

	// JWT Settings
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiration time.Duration `envconfig:"JWT_EXPIRES_IN" default:"168h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	// CORS Settings
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`
	CORSAllowMethods []string `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	CORSAllowHeaders []string `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`

	// Optional integrations, disabled when empty
	RedisURL     string `envconfig:"REDIS_URL"`
	RabbitMQURL  string `envconfig:"RABBITMQ_URL"`
	MQExchange   string `envconfig:"MQ_EXCHANGE" default:"campus.events"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Payments (Omise)
	OmisePublicKey string        `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey string        `envconfig:"OMISE_SECRET_KEY"`
	Currency       string        `envconfig:"PAYMENT_CURRENCY" default:"thb"`
	PaymentTimeout time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"15s"`
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) PaymentsEnabled() bool {
	return c.OmisePublicKey != "" && c.OmiseSecretKey != ""
}
