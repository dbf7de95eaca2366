// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is the process configuration, read from the environment. cmd/ binaries import
// github.com/joho/godotenv/autoload so a local .env file is picked up first.
type Config struct {
	Port     string
	LogLevel logrus.Level

	// AllowedOrigins is the CORS allow list for the REST API.
	AllowedOrigins []string

	// JWTSecret selects HS256 verification with a shared secret. When empty the server
	// falls back to an ephemeral ed25519 key pair.
	JWTSecret string

	RedisAddr        string
	RedisDB          int
	ArchiveQueue     string
	ArchiveBatchSize int
	ArchiveFlush     time.Duration

	// MatchIdleTimeout discards unresolved matches older than this. Zero disables it.
	MatchIdleTimeout time.Duration
	CallTimeout      time.Duration

	Avatars AvatarConfig
}

// AvatarConfig points at an S3-compatible bucket.
type AvatarConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	MaxBytes        int64
}

// Enabled reports whether enough is configured to talk to the bucket.
func (a AvatarConfig) Enabled() bool {
	return a.Bucket != "" && a.AccessKeyID != "" && a.SecretAccessKey != ""
}

// Load reads the configuration. Malformed values fall back to their defaults.
func Load() Config {
	return Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnvLevel("LOG_LEVEL", logrus.InfoLevel),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", []string{"https://*", "http://*"}),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		ArchiveQueue:     getEnv("ARCHIVE_QUEUE_NAME", "ratedrps_matches"),
		ArchiveBatchSize: getEnvInt("ARCHIVE_BATCH_SIZE", 50),
		ArchiveFlush:     time.Duration(getEnvInt("ARCHIVE_FLUSH_MS", 2000)) * time.Millisecond,
		MatchIdleTimeout: getEnvDuration("MATCH_IDLE_TIMEOUT", 0),
		CallTimeout:      getEnvDuration("COLLABORATOR_TIMEOUT", 5*time.Second),
		Avatars: AvatarConfig{
			Endpoint:        os.Getenv("AVATAR_ENDPOINT"),
			Region:          getEnv("AVATAR_REGION", "auto"),
			Bucket:          getEnv("AVATAR_BUCKET", "avatars"),
			AccessKeyID:     os.Getenv("AVATAR_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AVATAR_SECRET_ACCESS_KEY"),
			PublicBaseURL:   strings.TrimRight(os.Getenv("AVATAR_PUBLIC_URL"), "/"),
			MaxBytes:        int64(getEnvInt("AVATAR_MAX_BYTES", 5*1024*1024)),
		},
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// getEnvDuration accepts Go durations ("90s") and "0"/"never"/"off" for zero.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	switch s {
	case "":
		return def
	case "0", "never", "off":
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func getEnvLevel(key string, def logrus.Level) logrus.Level {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return def
	}
	return lvl
}
