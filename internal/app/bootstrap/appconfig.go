// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging, CORS and body limits.
// Everything StudyPal itself needs lives here and is loaded in LoadConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: studypal-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// CSRF protection for cookie sessions
	CSRFKey            string   // exactly 32 bytes; blank means random per process
	CSRFTrustedOrigins []string // hosts of browser frontends served from another origin

	// TrustProxyHeaders makes rate limiting key on X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	// Identity provider tokens (HS256)
	TokenSecret string
	TokenIssuer string

	// Blob storage: "minio" or "memory"
	StorageType      string
	MinIOEndpoint    string
	MinIOAccessKey   string
	MinIOSecretKey   string
	MinIOBucket      string
	MinIOUseSSL      bool
	StorageQuota     int64 // bytes per user
	MaxUploadSize    int64 // bytes per file

	// Pub/sub (blank address means in-process)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Material activity stream (blank brokers disables it)
	KafkaBrokers []string
	KafkaTopic   string

	// Background work and limits
	ReminderInterval time.Duration
	ChatRateLimit    int
	ChatRateWindow   time.Duration
}
