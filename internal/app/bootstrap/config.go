// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/postboard/internal/app/system/pagecache"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Postboard.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: POSTBOARD_MONGO_URI, POSTBOARD_CACHE_TTL, etc.
//   - Command-line flags: --mongo_uri, --cache_ttl, etc.
var appConfigKeys = []config.AppKey{
	{Name: "site_name", Default: "Postboard", Desc: "Site name shown in the page header"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "postboard", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "postboard-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "336h", Desc: "Session lifetime (e.g., 24h, 336h)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-0123456789abcd", Desc: "CSRF token key (32 bytes)"},

	// Page cache
	{Name: "cache_backend", Default: "memory", Desc: "Index page cache backend: 'memory' or 'redis'"},
	{Name: "cache_ttl", Default: "20s", Desc: "How long a cached index page is served"},
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address for the shared cache tier"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Image storage
	{Name: "storage_type", Default: "local", Desc: "Image storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/posts", Desc: "Local storage path for uploaded images"},
	{Name: "storage_local_url", Default: "/media/posts", Desc: "URL prefix for serving local images"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "posts/", Desc: "S3 key prefix"},
	{Name: "storage_s3_url", Default: "", Desc: "Public bucket or CDN URL (blank derives it)"},

	// Admin bootstrap
	{Name: "admin_username", Default: "", Desc: "Username promoted to admin on startup"},

	{Name: "login_rate_limit", Default: 20, Desc: "Login/signup POSTs allowed per minute per IP"},

	// Handler deadlines for database and storage calls
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for feed pages, lists and uploads"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for cascading deletes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, POSTBOARD_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "POSTBOARD", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SiteName: appValues.String("site_name"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 14*24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		CacheBackend:  appValues.String("cache_backend"),
		CacheTTL:      appValues.Duration("cache_ttl", pagecache.DefaultTTL),
		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),
		StorageS3Region:  appValues.String("storage_s3_region"),
		StorageS3Bucket:  appValues.String("storage_s3_bucket"),
		StorageS3Prefix:  appValues.String("storage_s3_prefix"),
		StorageS3URL:     appValues.String("storage_s3_url"),

		AdminUsername:  appValues.String("admin_username"),
		LoginRateLimit: appValues.Int("login_rate_limit"),

		Timeouts: timeouts.Config{
			Short:  appValues.Duration("timeout_short", timeouts.DefaultShort),
			Medium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
			Long:   appValues.Duration("timeout_long", timeouts.DefaultLong),
		},
	}

	// Applied here so ConnectDB and EnsureSchema already see the overrides.
	timeouts.Configure(appCfg.Timeouts)

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Postboard validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateApp(appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.CSRFKey) != 32 {
		logger.Warn("csrf_key should be exactly 32 bytes in production", zap.Int("length", len(appCfg.CSRFKey)))
	}
	return nil
}

// validateApp checks the app keys that do not depend on core config.
func validateApp(appCfg AppConfig) error {
	var errs []error
	switch appCfg.CacheBackend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache_backend must be 'memory' or 'redis', got %q", appCfg.CacheBackend))
	}
	if appCfg.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must be positive, got %s", appCfg.CacheTTL))
	}
	switch appCfg.StorageType {
	case "local":
	case "s3":
		if appCfg.StorageS3Bucket == "" {
			errs = append(errs, errors.New("storage_type 's3' requires storage_s3_bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType))
	}
	if appCfg.LoginRateLimit < 0 {
		errs = append(errs, errors.New("login_rate_limit must not be negative"))
	}
	return errors.Join(errs...)
}
