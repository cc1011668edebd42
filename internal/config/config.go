package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, read from the environment
type Config struct {
	App      AppConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Minio    MinioConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig
	Log      LogConfig
}

type AppConfig struct {
	Env             string
	Port            string
	ShutdownTimeout time.Duration
	CORS            CORSConfig
	RateLimit       int // Requests per minute per IP, 0 disables
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// Origins splits the comma separated origin list
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	SurveyTTL time.Duration
	DraftTTL  time.Duration
}

type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string // Served directly when set, otherwise presigned URLs
}

// Enabled reports whether a blob store is configured
func (c MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether events should be published
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

type AuthConfig struct {
	JWTSecret string `json:"-"`
	Issuer    string
	Audience  string
	TokenTTL  time.Duration // Lifetime of tokens minted by the seed tool
}

type LogConfig struct {
	Level string
}

// IsDevelopment reports whether dev conveniences are on
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Load reads .env when present and then the process environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			Env:             GetEnvString("APP_ENV", "development"),
			Port:            GetEnvString("PORT", "8080"),
			ShutdownTimeout: GetEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				AllowedOrigins: GetEnvString("CORS_ALLOWED_ORIGINS", "*"),
				AllowedMethods: GetEnvString("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"),
				AllowedHeaders: GetEnvString("CORS_ALLOWED_HEADERS", "Content-Type, Authorization, X-Request-ID"),
			},
			RateLimit: GetEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		},
		Mongo: MongoConfig{
			URI:      GetEnvString("MONGO_URI", "mongodb://localhost:27017"),
			Database: GetEnvString("MONGO_DB", "surveyflow"),
		},
		Redis: RedisConfig{
			Addr:      strings.TrimPrefix(GetEnvString("REDIS_ADDR", "localhost:6379"), "redis://"),
			Password:  GetEnvString("REDIS_PASSWORD", ""),
			DB:        GetEnvInt("REDIS_DB", 0),
			SurveyTTL: GetEnvDuration("SURVEY_CACHE_TTL", 10*time.Minute),
			DraftTTL:  GetEnvDuration("DRAFT_TTL", 7*24*time.Hour),
		},
		Minio: MinioConfig{
			Endpoint:      GetEnvString("MINIO_ENDPOINT", ""),
			AccessKey:     GetEnvString("MINIO_ACCESS_KEY", ""),
			SecretKey:     GetEnvString("MINIO_SECRET_KEY", ""),
			Bucket:        GetEnvString("MINIO_BUCKET", "survey-videos"),
			UseSSL:        GetEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: strings.TrimSuffix(GetEnvString("MINIO_PUBLIC_BASE_URL", ""), "/"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      GetEnvString("RABBITMQ_URL", ""),
			Exchange: GetEnvString("RABBITMQ_EXCHANGE", "surveyflow.events"),
		},
		Auth: AuthConfig{
			JWTSecret: GetEnvString("JWT_SECRET", "dev-secret-change-in-production"),
			Issuer:    GetEnvString("JWT_ISSUER", ""),
			Audience:  GetEnvString("JWT_AUDIENCE", ""),
			TokenTTL:  GetEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level: GetEnvString("LOG_LEVEL", "info"),
		},
	}
}
