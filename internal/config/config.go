package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config representa la configuración del servicio
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Inngest  InngestConfig
	Logging  LoggingConfig
	Email    EmailConfig
	Storage  StorageConfig
	MyInvois MyInvoisConfig
	Seller   SellerConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port        string
	Host        string
	Env         string
	BaseURL     string
	CORSOrigins []string
}

// DatabaseConfig representa la configuración de la base de datos
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig representa la configuración de Redis
type RedisConfig struct {
	Enabled        bool
	Host           string
	Port           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// InngestConfig representa la configuración de Inngest
type InngestConfig struct {
	EventKey   string
	SigningKey string
	AppID      string
	Dev        bool
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// EmailConfig representa la configuración de email
type EmailConfig struct {
	ResendAPIKey string
	From         string
}

// StorageConfig representa el archivo S3 compatible de documentos enviados
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// MyInvoisConfig representa la configuración del API de MyInvois (LHDN)
type MyInvoisConfig struct {
	ClientID      string
	ClientSecret  string
	BaseURL       string
	PortalURL     string
	AuthTimeout   time.Duration
	SubmitTimeout time.Duration
	QueryTimeout  time.Duration
	DemoDelay     time.Duration
}

// SellerConfig representa la identidad del emisor de las facturas
type SellerConfig struct {
	TIN      string
	Name     string
	Branch   string
	Address  string
	Postcode string
	City     string
	State    string
	Country  string
	Email    string
	Phone    string
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// Cargar archivo .env si existe; no es crítico si no existe
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8081"),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Env:         getEnv("SERVER_ENV", "development"),
			BaseURL:     getEnv("SERVER_BASE_URL", "http://localhost:8081"),
			CORSOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Name:     getEnv("PGDATABASE", "einvoice"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:        getEnvAsBool("REDIS_ENABLED", false),
			Host:           getEnv("REDIS_HOST", "localhost"),
			Port:           getEnv("REDIS_PORT", "6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Inngest: InngestConfig{
			EventKey:   getEnv("INNGEST_EVENT_KEY", ""),
			SigningKey: getEnv("INNGEST_SIGNING_KEY", ""),
			AppID:      getEnv("INNGEST_APP_ID", "einvoice-service"),
			Dev:        getEnvAsBool("INNGEST_DEV", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "onboarding@resend.dev"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("ARCHIVE_ENDPOINT", ""),
			Region:          getEnv("ARCHIVE_REGION", "ap-southeast-1"),
			AccessKeyID:     getEnv("ARCHIVE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("ARCHIVE_BUCKET", "einvoice-documents"),
		},
		MyInvois: MyInvoisConfig{
			ClientID:      getEnv("CLIENT_ID", getEnv("MYINVOIS_CLIENT_ID", "")),
			ClientSecret:  getEnv("CLIENT_SECRET", getEnv("MYINVOIS_CLIENT_SECRET", "")),
			BaseURL:       getEnv("MYINVOIS_BASE_URL", "https://preprod-api.myinvois.hasil.gov.my"),
			PortalURL:     getEnv("MYINVOIS_PORTAL_URL", "https://preprod.myinvois.hasil.gov.my"),
			AuthTimeout:   getEnvAsDuration("MYINVOIS_AUTH_TIMEOUT", 10*time.Second),
			SubmitTimeout: getEnvAsDuration("MYINVOIS_SUBMIT_TIMEOUT", 15*time.Second),
			QueryTimeout:  getEnvAsDuration("MYINVOIS_QUERY_TIMEOUT", 10*time.Second),
			DemoDelay:     getEnvAsDuration("MYINVOIS_DEMO_DELAY", 2*time.Second),
		},
		Seller: SellerConfig{
			TIN:      getEnv("SELLER_TIN", "123456789012"),
			Name:     getEnv("SELLER_NAME", "Your Company Name"),
			Branch:   getEnv("SELLER_BRANCH", "000"),
			Address:  getEnv("SELLER_ADDRESS", "Your Company Address"),
			Postcode: getEnv("SELLER_POSTCODE", "50000"),
			City:     getEnv("SELLER_CITY", "Kuala Lumpur"),
			State:    getEnv("SELLER_STATE", "WP Kuala Lumpur"),
			Country:  getEnv("SELLER_COUNTRY", "MY"),
			Email:    getEnv("SELLER_EMAIL", "your-email@company.com"),
			Phone:    getEnv("SELLER_PHONE", "+60312345678"),
		},
	}

	return config, nil
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool obtiene una variable de entorno como booleano
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsSlice obtiene una variable de entorno separada por comas
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction retorna true si el entorno es de producción
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetDSN retorna la cadena de conexión a la base de datos
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// ArchiveEnabled indica si hay credenciales para el archivo de documentos
func (c *Config) ArchiveEnabled() bool {
	return c.Storage.Endpoint != "" && c.Storage.AccessKeyID != "" && c.Storage.SecretAccessKey != ""
}
