package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL connection settings for the registration
// journal.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StoreGatewayConfig holds settings for the HTTP pinning-gateway provider.
type StoreGatewayConfig struct {
	Endpoint       string
	TimeoutSec     int
	MaxUploadBytes int64
}

// S3Config holds settings for the S3-compatible content-store provider
// (MinIO-supported).
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig selects and configures the content-store provider.
type StoreConfig struct {
	Provider string // "gateway" | "s3"
	Gateway  StoreGatewayConfig
	S3       S3Config
}

// LedgerConfig holds settings for the on-chain dataset registry.
type LedgerConfig struct {
	RPCURL            string
	ChainID           uint64
	ContractAddress   string
	PrivateKey        string
	ConfirmTimeoutSec int
	PollIntervalMS    int
}

// ReconcileConfig bounds the orphan reconciliation loop.
type ReconcileConfig struct {
	MaxAttempts       int
	InitialBackoffSec int
	MaxIntervalSec    int
	BatchSize         int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	Store     StoreConfig
	Ledger    LedgerConfig
	Reconcile ReconcileConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Store: StoreConfig{
			Provider: getEnv("STORE_PROVIDER", "gateway"),
			Gateway: StoreGatewayConfig{
				Endpoint:       getEnv("STORE_GATEWAY_ENDPOINT", ""),
				TimeoutSec:     getEnvInt("STORE_GATEWAY_TIMEOUT_SEC", 60),
				MaxUploadBytes: getEnvInt64("STORE_MAX_UPLOAD_BYTES", 0),
			},
			S3: S3Config{
				Endpoint:  getEnv("S3_ENDPOINT", ""),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
				Bucket:    getEnv("S3_BUCKET", ""),
				UseSSL:    getEnvBool("S3_USE_SSL", false),
			},
		},
		Ledger: LedgerConfig{
			RPCURL:            getEnv("LEDGER_RPC_URL", ""),
			ChainID:           getEnvUint64("LEDGER_CHAIN_ID", 421614), // Arbitrum Sepolia
			ContractAddress:   getEnv("LEDGER_CONTRACT_ADDRESS", ""),
			PrivateKey:        getEnv("LEDGER_PRIVATE_KEY", ""),
			ConfirmTimeoutSec: getEnvInt("LEDGER_CONFIRM_TIMEOUT_SEC", 90),
			PollIntervalMS:    getEnvInt("LEDGER_POLL_INTERVAL_MS", 2000),
		},
		Reconcile: ReconcileConfig{
			MaxAttempts:       getEnvInt("RECONCILE_MAX_ATTEMPTS", 5),
			InitialBackoffSec: getEnvInt("RECONCILE_INITIAL_BACKOFF_SEC", 2),
			MaxIntervalSec:    getEnvInt("RECONCILE_MAX_INTERVAL_SEC", 30),
			BatchSize:         getEnvInt("RECONCILE_BATCH_SIZE", 20),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvUint64(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseUint(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
