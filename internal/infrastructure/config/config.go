package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the anxiety prediction service.
type Config struct {
	HTTPPort            string   `env:"HTTP_PORT"                   envDefault:"8000"`
	GRPCPort            string   `env:"GRPC_PORT"                   envDefault:"9000"`
	ModelPath           string   `env:"MODEL_PATH"                  envDefault:"model.json"`
	AttributionBaseline string   `env:"ATTRIBUTION_BASELINE"        envDefault:"sample"`
	DatabaseURL         string   `env:"DATABASE_URL"`
	KafkaBrokers        []string `env:"KAFKA_BROKERS"               envSeparator:","`
	KafkaTopic          string   `env:"KAFKA_TOPIC"                 envDefault:"anxiety.predictions"`
	KafkaTLS            bool     `env:"KAFKA_TLS"                   envDefault:"false"`
	KafkaSASLMechanism  string   `env:"KAFKA_SASL_MECHANISM"        envDefault:"PLAIN"`
	KafkaSASLUsername   string   `env:"KAFKA_SASL_USERNAME"`
	KafkaSASLPassword   string   `env:"KAFKA_SASL_PASSWORD"`
	HistorySize         int      `env:"HISTORY_SIZE"                envDefault:"1000"`
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS"        envDefault:"*" envSeparator:","`
	LogLevel            string   `env:"LOG_LEVEL"                   envDefault:"info"`
	LogFormat           string   `env:"LOG_FORMAT"                  envDefault:"json"`
	Environment         string   `env:"ENVIRONMENT"                 envDefault:"development"`
	OTLPEndpoint        string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	TracingEnabled      bool     `env:"TRACING_ENABLED"             envDefault:"false"`
	GRPCReflection      bool     `env:"GRPC_REFLECTION"             envDefault:"false"`
	GRPCTLSCertFile     string   `env:"GRPC_TLS_CERT_FILE"`
	GRPCTLSKeyFile      string   `env:"GRPC_TLS_KEY_FILE"`
	AuthJWTSecret       string   `env:"AUTH_JWT_SECRET"`
	AuthJWTPublicKey    string   `env:"AUTH_JWT_PUBLIC_KEY_FILE"`
	AuthJWTIssuer       string   `env:"AUTH_JWT_ISSUER"`
	AuthJWTAudience     string   `env:"AUTH_JWT_AUDIENCE"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the tags cannot express.
func (c *Config) Validate() error {
	switch c.AttributionBaseline {
	case "sample", "training":
	default:
		return fmt.Errorf("ATTRIBUTION_BASELINE must be sample or training, got %q", c.AttributionBaseline)
	}
	if strings.TrimSpace(c.ModelPath) == "" {
		return fmt.Errorf("MODEL_PATH must not be empty")
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("HISTORY_SIZE must be positive, got %d", c.HistorySize)
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		return fmt.Errorf("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together")
	}
	if c.AuthJWTSecret != "" && c.AuthJWTPublicKey != "" {
		return fmt.Errorf("AUTH_JWT_SECRET and AUTH_JWT_PUBLIC_KEY_FILE are mutually exclusive")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is")
	}
	return nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// AuthEnabled reports whether the API requires bearer tokens.
func (c *Config) AuthEnabled() bool {
	return c.AuthJWTSecret != "" || c.AuthJWTPublicKey != ""
}

// TLSEnabled reports whether the gRPC server should serve TLS.
func (c *Config) TLSEnabled() bool {
	return c.GRPCTLSCertFile != ""
}
