package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	GCP       GCPConfig
	Inference InferenceConfig
	Session   SessionConfig
	Workspace WorkspaceConfig
	Auth      AuthConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	WorkerLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ServiceName        string
	OtelEnabled        bool
	OtelEndpoint       string
}

type GCPConfig struct {
	Project         string
	Location        string
	BucketName      string
	CredentialsJSON string // service account JSON; empty means application default credentials
}

type InferenceConfig struct {
	Backend     string // "http" or "vertex"
	EndpointURL string
	APIKey      string
	VertexModel string
	Timeout     time.Duration
}

type SessionConfig struct {
	Store        string // "memory" or "redis"
	TTL          time.Duration
	CookieName   string
	ChoicesWidth int
}

type WorkspaceConfig struct {
	StorageDriver     string // "gcs" or "memory"
	ExamplesPrefix    string
	AllowedExtensions []string
	UploadMaxBytes    int64
	ReconcileTopic    string
}

type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.json"),
			WorkerLogFilePath:  getEnv("WORKER_LOG_FILE_PATH", "logs/reconcile.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "aficionado-backend"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		GCP: GCPConfig{
			Project:         getEnv("GCP_PROJECT", ""),
			Location:        getEnv("GCP_LOCATION", "us-central1"),
			BucketName:      getEnv("GCP_BUCKET_NAME", ""),
			CredentialsJSON: getEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
		},
		Inference: InferenceConfig{
			Backend:     getEnv("INFERENCE_BACKEND", "http"),
			EndpointURL: getEnv("GCF_ENDPOINT_CALL_MODEL", ""),
			APIKey:      getEnv("GCF_API_KEY", ""),
			VertexModel: getEnv("VERTEX_MODEL", "gemini-2.0-flash"),
			Timeout:     getEnvAsDuration("INFERENCE_TIMEOUT", 120*time.Second),
		},
		Session: SessionConfig{
			Store:        getEnv("SESSION_STORE", "memory"),
			TTL:          getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "aficionado_session"),
			ChoicesWidth: getEnvAsInt("CHOICES_WIDTH", 4),
		},
		Workspace: WorkspaceConfig{
			StorageDriver:     getEnv("STORAGE_DRIVER", "gcs"),
			ExamplesPrefix:    getEnv("EXAMPLES_PREFIX", "examples"),
			AllowedExtensions: getEnvAsList("ALLOWED_EXTENSIONS", []string{"pdf", "csv", "txt", "md", "docx", "xlsx"}),
			UploadMaxBytes:    int64(getEnvAsInt("UPLOAD_MAX_BYTES", 20*1024*1024)),
			ReconcileTopic:    getEnv("RECONCILE_TOPIC", "workspace.reconcile"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", "default_secret"),
			TokenTTL:           getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/auth/google/callback"),
		},
	}
}

// IsProduction reports whether GO_ENV selects production logging and cookies.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		part = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
