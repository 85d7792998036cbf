package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selectors.
const (
	BackendREST     = "rest"
	BackendSupabase = "supabase"
)

// Snapshot drivers.
const (
	SnapshotMemory   = "memory"
	SnapshotRedis    = "redis"
	SnapshotPostgres = "postgres"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	JWTSecret     string
	AllowedOrigin string
	// Remote backend
	Backend        string
	BackendURL     string
	BackendTimeout time.Duration
	SupabaseDBDSN  string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// Snapshot persistence
	SnapshotDriver string
	SnapshotDBDSN  string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SnapshotTTL    time.Duration
	SessionIdleTTL time.Duration
	// R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	// Upload Configuration
	MaxUploadSizeMB int64
	R2UploadTimeout time.Duration
	// Facebook Conversions API
	FBPixelID     string
	FBAccessToken string
	FBAPIVersion  string
	FBTestCode    string
	// Cache
	CachePromotionTTL time.Duration
	CacheProductTTL   time.Duration
	// Backend circuit breaker
	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerFailureRatio float64
	BreakerMinRequests  uint32
	// Business Rules
	PageSize        int
	MaxCartQuantity int
	Currency        string
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env for local dev, system env vars elsewhere.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		Backend:        getEnv("BACKEND", BackendREST),
		BackendURL:     getEnv("BACKEND_URL", ""),
		BackendTimeout: getDurationEnv("BACKEND_TIMEOUT", 10*time.Second),
		SupabaseDBDSN:  getEnv("SUPABASE_DB_DSN", ""),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		SnapshotDriver: getEnv("SNAPSHOT_DRIVER", SnapshotMemory),
		SnapshotDBDSN:  getEnv("SNAPSHOT_DB_DSN", ""),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("REDIS_DB", 0),
		SnapshotTTL:    getDurationEnv("SNAPSHOT_TTL", 30*24*time.Hour),
		SessionIdleTTL: getDurationEnv("SESSION_IDLE_TTL", 30*time.Minute),

		// R2 Storage
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		// Upload defaults: 10MB max, 30s timeout
		MaxUploadSizeMB: getInt64Env("MAX_UPLOAD_SIZE_MB", 10),
		R2UploadTimeout: getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),

		FBPixelID:     getEnv("FB_PIXEL_ID", ""),
		FBAccessToken: getEnv("FB_ACCESS_TOKEN", ""),
		FBAPIVersion:  getEnv("FB_API_VERSION", "v21.0"),
		FBTestCode:    getEnv("FB_TEST_EVENT_CODE", ""),

		CachePromotionTTL: getDurationEnv("CACHE_PROMOTION_TTL", 5*time.Minute),
		CacheProductTTL:   getDurationEnv("CACHE_PRODUCT_TTL", time.Minute),

		BreakerMaxRequests:  uint32(getIntEnv("BREAKER_MAX_REQUESTS", 1)),
		BreakerInterval:     getDurationEnv("BREAKER_INTERVAL", 60*time.Second),
		BreakerTimeout:      getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),
		BreakerFailureRatio: getFloatEnv("BREAKER_FAILURE_RATIO", 0.5),
		BreakerMinRequests:  uint32(getIntEnv("BREAKER_MIN_REQUESTS", 5)),

		// Business rules: 20 per page, 1000 max cart quantity
		PageSize:        getIntEnv("PAGE_SIZE", 20),
		MaxCartQuantity: getIntEnv("MAX_CART_QUANTITY", 1000),
		Currency:        getEnv("CURRENCY", "USD"),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	switch c.Backend {
	case BackendREST:
		if c.BackendURL == "" {
			log.Fatal("CRITICAL: BACKEND_URL is required when BACKEND=rest")
		}
	case BackendSupabase:
		if c.SupabaseDBDSN == "" {
			log.Fatal("CRITICAL: SUPABASE_DB_DSN is required when BACKEND=supabase")
		}
	default:
		log.Fatalf("CRITICAL: unknown BACKEND %q (want rest or supabase)", c.Backend)
	}

	switch c.SnapshotDriver {
	case SnapshotMemory, SnapshotRedis:
	case SnapshotPostgres:
		if c.SnapshotDBDSN == "" {
			log.Fatal("CRITICAL: SNAPSHOT_DB_DSN is required when SNAPSHOT_DRIVER=postgres")
		}
	default:
		log.Fatalf("CRITICAL: unknown SNAPSHOT_DRIVER %q", c.SnapshotDriver)
	}

	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.PageSize < 1 {
		log.Fatal("CRITICAL: PAGE_SIZE must be positive")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}
