// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/postboard/internal/app/system/imagestore"
	"github.com/dalemusser/postboard/internal/app/system/indexes"
	"github.com/dalemusser/postboard/internal/app/system/pagecache"
	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	"github.com/dalemusser/postboard/internal/app/system/validators"
	"github.com/dalemusser/postboard/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// janitorInterval is how often expired in-memory cache entries are swept.
const janitorInterval = time.Minute

// ConnectDB opens MongoDB, the cache backend and the image store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return deps, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return deps, fmt.Errorf("mongo ping: %w", err)
	}
	deps.PostboardMongoClient = client
	deps.PostboardMongoDatabase = client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	backend, err := connectCache(ctx, appCfg, &deps, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return deps, err
	}
	deps.Cache = pagecache.New(backend, appCfg.CacheTTL, pagecache.NewMetrics(deps.Registry), logger)

	if err := connectImages(ctx, appCfg, &deps, logger); err != nil {
		_ = client.Disconnect(ctx)
		if deps.Redis != nil {
			_ = deps.Redis.Close()
		}
		return deps, err
	}
	return deps, nil
}

func connectCache(ctx context.Context, appCfg AppConfig, deps *DBDeps, logger *zap.Logger) (pagecache.Backend, error) {
	if appCfg.CacheBackend != "redis" {
		deps.Memory = pagecache.NewMemory(time.Now)
		deps.Janitor = workers.NewCacheJanitor(deps.Memory, logger, janitorInterval)
		logger.Info("page cache in memory", zap.Duration("ttl", appCfg.CacheTTL))
		return deps.Memory, nil
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping %s: %w", appCfg.RedisAddr, err)
	}
	deps.Redis = rc
	logger.Info("page cache in redis", zap.String("addr", appCfg.RedisAddr), zap.Duration("ttl", appCfg.CacheTTL))
	return pagecache.NewRedis(rc, ""), nil
}

func connectImages(ctx context.Context, appCfg AppConfig, deps *DBDeps, logger *zap.Logger) error {
	if appCfg.StorageType == "s3" {
		s3, err := imagestore.NewS3(ctx, imagestore.S3Config{
			Region:  appCfg.StorageS3Region,
			Bucket:  appCfg.StorageS3Bucket,
			Prefix:  appCfg.StorageS3Prefix,
			BaseURL: appCfg.StorageS3URL,
		})
		if err != nil {
			return err
		}
		deps.Images = s3
		logger.Info("images stored in S3", zap.String("bucket", appCfg.StorageS3Bucket))
		return nil
	}

	local, err := imagestore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
	if err != nil {
		return fmt.Errorf("image store: %w", err)
	}
	deps.Images = local
	deps.LocalImages = local
	logger.Info("images stored on disk", zap.String("path", appCfg.StorageLocalPath))
	return nil
}

// EnsureSchema applies collection validators and indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	db := deps.PostboardMongoDatabase
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured")
	return nil
}
