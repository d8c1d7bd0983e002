package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Scoring
	ScoringStrategy string
	BandSet         string
	GaugeBandSet    string
	BandSetFile     string

	// Classifier artifacts
	ArtifactSource        string
	ArtifactDir           string
	ArtifactRedisPrefix   string
	ModelName             string
	ModelRegistryURL      string
	ModelRegistryTokenURL string
	ModelRegistryClientID string
	ModelRegistrySecret   string
	ModelRegistryTimeout  time.Duration

	// Database
	BandStoreEnabled bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers       []string
	KafkaGroupID       string
	ModelEventsTopic   string
	ModelEventsEnabled bool
}

const (
	SourceFile  = "file"
	SourceRedis = "redis"
	SourceHTTP  = "http"
)

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8090"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 15*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 64*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		ScoringStrategy: strings.ToLower(getEnv("SCORING_STRATEGY", "linear")),
		BandSet:         getEnv("BAND_SET", "A"),
		GaugeBandSet:    getEnv("GAUGE_BAND_SET", "gauge"),
		BandSetFile:     getEnv("BAND_SET_FILE", ""),

		ArtifactSource:        strings.ToLower(getEnv("ARTIFACT_SOURCE", SourceFile)),
		ArtifactDir:           getEnv("ARTIFACT_DIR", "./artifacts"),
		ArtifactRedisPrefix:   getEnv("ARTIFACT_REDIS_PREFIX", "artifacts"),
		ModelName:             getEnv("MODEL_NAME", "cvd-risk"),
		ModelRegistryURL:      getEnv("MODEL_REGISTRY_URL", ""),
		ModelRegistryTokenURL: getEnv("MODEL_REGISTRY_TOKEN_URL", ""),
		ModelRegistryClientID: getEnv("MODEL_REGISTRY_CLIENT_ID", ""),
		ModelRegistrySecret:   getEnv("MODEL_REGISTRY_CLIENT_SECRET", ""),
		ModelRegistryTimeout:  getDuration("MODEL_REGISTRY_TIMEOUT", 10*time.Second),

		BandStoreEnabled: getBoolEnv("BAND_STORE_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "cvdrisk"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "cvdrisk"),
		PostgresDB:       getEnv("POSTGRES_DB", "cvdrisk"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:       getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "cvd-risk-service"),
		ModelEventsTopic:   getEnv("MODEL_EVENTS_TOPIC", "model-lifecycle"),
		ModelEventsEnabled: getBoolEnv("MODEL_EVENTS_ENABLED", false),
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.ScoringStrategy {
	case "linear", "classifier":
	default:
		return fmt.Errorf("unknown SCORING_STRATEGY %q", c.ScoringStrategy)
	}
	switch c.ArtifactSource {
	case SourceFile, SourceRedis:
	case SourceHTTP:
		if c.ModelRegistryURL == "" {
			return fmt.Errorf("MODEL_REGISTRY_URL required for ARTIFACT_SOURCE=http")
		}
	default:
		return fmt.Errorf("unknown ARTIFACT_SOURCE %q", c.ArtifactSource)
	}
	if strings.TrimSpace(c.BandSet) == "" {
		return fmt.Errorf("BAND_SET must not be empty")
	}
	if c.ModelName == "" {
		return fmt.Errorf("MODEL_NAME must not be empty")
	}
	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost,
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresDB,
		c.PostgresPort,
		c.PostgresSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
