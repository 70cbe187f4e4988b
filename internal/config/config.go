package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers soportados.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config agrupa la configuración del servicio leída desde el entorno.
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"smart-feeding"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	DBDSN         string `env:"DB_DSN"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"./data/smart-feeding.db"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"72h"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"smart-feeding"`
	// DevAuth habilita X-Debug-User-ID; solo aplica sin JWT_SECRET (ver DevAuthEnabled).
	DevAuth bool `env:"DEV_AUTH" envDefault:"true"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AdminEmails        []string `env:"ADMIN_EMAILS" envSeparator:","`

	BackupSchedule string `env:"BACKUP_SCHEDULE"`
	BackupDir      string `env:"BACKUP_DIR" envDefault:"./backups"`
	BackupS3Bucket string `env:"BACKUP_S3_BUCKET"`
	BackupS3Prefix string `env:"BACKUP_S3_PREFIX" envDefault:"backups/"`
	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load lee .env si existe y luego las variables de entorno.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate chequea combinaciones inválidas.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("DB_DSN is required for STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageDriver == DriverSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("SQLITE_PATH is required for STORAGE_DRIVER=sqlite")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.JWTSecret == "" && !c.DevAuth {
		return fmt.Errorf("JWT_SECRET is required when DEV_AUTH=false")
	}
	return nil
}

// Addr es la dirección de escucha del servidor HTTP.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// DevAuthEnabled: los headers de debug nunca conviven con tokens firmados.
func (c *Config) DevAuthEnabled() bool {
	return c.DevAuth && strings.TrimSpace(c.JWTSecret) == ""
}

// IsAdminEmail indica si el email figura en ADMIN_EMAILS (sin distinguir mayúsculas).
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(e)) == email && email != "" {
			return true
		}
	}
	return false
}
