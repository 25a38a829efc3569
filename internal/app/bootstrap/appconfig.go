// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/postboard/internal/app/system/timeouts"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig keeps the
// framework-level settings (ports, TLS, log level); everything specific to
// the blog lives here.
type AppConfig struct {
	SiteName string // Shown in every page header

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: postboard-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime

	CSRFKey string // 32-byte key for CSRF tokens

	// Page cache configuration
	CacheBackend  string        // "memory" or "redis"
	CacheTTL      time.Duration // How long a cached index page is served
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Image storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/posts")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/media/posts")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region string
	StorageS3Bucket string
	StorageS3Prefix string
	StorageS3URL    string // Public bucket or CDN URL; derived from bucket and region when blank

	// AdminUsername is promoted to the admin role at startup.
	AdminUsername string

	// LoginRateLimit caps login and signup POSTs per minute per IP.
	LoginRateLimit int

	// Timeouts overrides handler deadlines; zero fields keep the defaults.
	Timeouts timeouts.Config
}
