// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	units "github.com/docker/go-units"
	"go.uber.org/zap"
)

// minTokenSecret is the shortest accepted HS256 secret.
const minTokenSecret = 32

const csrfKeyLen = 32

// appConfigKeys defines the configuration keys for StudyPal.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: STUDYPAL_MONGO_URI, STUDYPAL_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studypal", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "studypal-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},
	{Name: "csrf_key", Default: "", Desc: "32-byte CSRF key for cookie sessions (blank uses a random key per process)"},
	{Name: "csrf_trusted_origins", Default: "", Desc: "Comma-separated hosts allowed to make cookie-authenticated writes"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Use X-Forwarded-For/X-Real-IP for rate limiting (only behind a trusted proxy)"},

	// Identity provider
	{Name: "token_secret", Default: "dev-only-token-secret-0123456789ABCDEF", Desc: "HS256 secret shared with the identity provider"},
	{Name: "token_issuer", Default: "", Desc: "Expected token issuer (blank skips the check)"},

	// Blob storage
	{Name: "storage_type", Default: "memory", Desc: "Blob storage backend: 'minio' or 'memory'"},
	{Name: "minio_endpoint", Default: "localhost:9000", Desc: "MinIO/S3 endpoint (host:port)"},
	{Name: "minio_access_key", Default: "", Desc: "MinIO access key"},
	{Name: "minio_secret_key", Default: "", Desc: "MinIO secret key"},
	{Name: "minio_bucket", Default: "studypal", Desc: "Bucket for uploaded files"},
	{Name: "minio_use_ssl", Default: false, Desc: "Use TLS to reach MinIO"},
	{Name: "storage_quota", Default: "5GiB", Desc: "Storage quota per user (e.g., 5GiB, 500MiB)"},
	{Name: "max_upload_size", Default: "25MiB", Desc: "Largest accepted upload"},

	// Pub/sub
	{Name: "redis_addr", Default: "", Desc: "Redis address for pub/sub (blank uses an in-process bus)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Activity stream
	{Name: "kafka_brokers", Default: "", Desc: "Comma-separated Kafka brokers (blank disables the activity stream)"},
	{Name: "kafka_topic", Default: "studypal.material-activity", Desc: "Kafka topic for material activity"},

	// Background work and limits
	{Name: "reminder_interval", Default: "30s", Desc: "How often due reminders are dispatched"},
	{Name: "chat_rate_limit", Default: 20, Desc: "Chat messages allowed per user per window"},
	{Name: "chat_rate_window", Default: "1m", Desc: "Chat rate limit window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence is flags > env (WAFFLE_* for core, STUDYPAL_* for app) >
// config files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYPAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	quota, err := parseBytes("storage_quota", appValues.String("storage_quota"))
	if err != nil {
		return nil, AppConfig{}, err
	}
	maxUpload, err := parseBytes("max_upload_size", appValues.String("max_upload_size"))
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		CSRFKey:            appValues.String("csrf_key"),
		CSRFTrustedOrigins: splitList(appValues.String("csrf_trusted_origins")),
		TrustProxyHeaders:  appValues.Bool("trust_proxy_headers"),

		TokenSecret: appValues.String("token_secret"),
		TokenIssuer: appValues.String("token_issuer"),

		StorageType:    strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		MinIOEndpoint:  appValues.String("minio_endpoint"),
		MinIOAccessKey: appValues.String("minio_access_key"),
		MinIOSecretKey: appValues.String("minio_secret_key"),
		MinIOBucket:    appValues.String("minio_bucket"),
		MinIOUseSSL:    appValues.Bool("minio_use_ssl"),
		StorageQuota:   quota,
		MaxUploadSize:  maxUpload,

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		KafkaBrokers: splitList(appValues.String("kafka_brokers")),
		KafkaTopic:   appValues.String("kafka_topic"),

		ReminderInterval: appValues.Duration("reminder_interval", 30*time.Second),
		ChatRateLimit:    appValues.Int("chat_rate_limit"),
		ChatRateWindow:   appValues.Duration("chat_rate_window", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It rejects a malformed MongoDB URI, an unknown storage backend and a weak
// token secret before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case storageMemory:
		if coreCfg.Env == "prod" {
			logger.Warn("in-memory blob storage in production; uploads are lost on restart")
		}
	case storageMinIO:
		if appCfg.MinIOEndpoint == "" || appCfg.MinIOBucket == "" {
			return fmt.Errorf("storage_type minio requires minio_endpoint and minio_bucket")
		}
	default:
		return fmt.Errorf("storage_type must be 'minio' or 'memory', got %q", appCfg.StorageType)
	}

	if len(appCfg.TokenSecret) < minTokenSecret {
		return fmt.Errorf("token_secret must be at least %d characters", minTokenSecret)
	}
	if n := len(appCfg.CSRFKey); n != 0 && n != csrfKeyLen {
		return fmt.Errorf("csrf_key must be exactly %d bytes, got %d", csrfKeyLen, n)
	}
	if appCfg.ReminderInterval <= 0 {
		return fmt.Errorf("reminder_interval must be positive")
	}
	if appCfg.ChatRateLimit <= 0 || appCfg.ChatRateWindow <= 0 {
		return fmt.Errorf("chat_rate_limit and chat_rate_window must be positive")
	}

	return nil
}

func parseBytes(key, v string) (int64, error) {
	n, err := units.RAMInBytes(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
