package bootstrap

import (
	"strings"
	"testing"
	"time"

	userstore "github.com/dalemusser/postboard/internal/app/store/users"
	"github.com/dalemusser/postboard/internal/testutil"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leo := testutil.NewFixtures(t, db).CreateUser(ctx, "leo")
	deps := DBDeps{PostboardMongoDatabase: db}

	// Username lookup is case-insensitive.
	if err := ensureAdmin(ctx, deps, " LEO ", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	u, err := userstore.New(db).GetByID(ctx, leo.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", u.Role)
	}

	// Running again is a no-op.
	if err := ensureAdmin(ctx, deps, "leo", testLogger()); err != nil {
		t.Fatalf("second ensureAdmin failed: %v", err)
	}
}

func TestEnsureAdmin_UnknownOrBlank(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{PostboardMongoDatabase: db}
	if err := ensureAdmin(ctx, deps, "nobody", testLogger()); err != nil {
		t.Errorf("unknown username should be skipped, got %v", err)
	}
	if err := ensureAdmin(ctx, deps, "", testLogger()); err != nil {
		t.Errorf("blank username should be skipped, got %v", err)
	}
	if n, _ := userstore.New(db).Count(ctx); n != 0 {
		t.Errorf("ensureAdmin must not create users, found %d", n)
	}
}

func validConfig() AppConfig {
	return AppConfig{
		CacheBackend:   "memory",
		CacheTTL:       20 * time.Second,
		StorageType:    "local",
		LoginRateLimit: 20,
	}
}

func TestValidateApp(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*AppConfig)
		wantErr string
	}{
		{"defaults", func(*AppConfig) {}, ""},
		{"redis", func(c *AppConfig) { c.CacheBackend = "redis" }, ""},
		{"s3 with bucket", func(c *AppConfig) { c.StorageType = "s3"; c.StorageS3Bucket = "media" }, ""},
		{"unknown cache", func(c *AppConfig) { c.CacheBackend = "memcached" }, "cache_backend"},
		{"zero ttl", func(c *AppConfig) { c.CacheTTL = 0 }, "cache_ttl"},
		{"s3 without bucket", func(c *AppConfig) { c.StorageType = "s3" }, "storage_s3_bucket"},
		{"unknown storage", func(c *AppConfig) { c.StorageType = "ftp" }, "storage_type"},
		{"negative rate limit", func(c *AppConfig) { c.LoginRateLimit = -1 }, "login_rate_limit"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.edit(&cfg)
			err := validateApp(cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}
