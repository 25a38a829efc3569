// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/postboard/internal/app/system/imagestore"
	"github.com/dalemusser/postboard/internal/app/system/pagecache"
	"github.com/dalemusser/postboard/internal/app/system/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	PostboardMongoClient   *mongo.Client
	PostboardMongoDatabase *mongo.Database

	// Redis is nil unless cache_backend is "redis".
	Redis redis.UniversalClient

	// Memory is the in-process cache tier; nil when Redis serves the cache.
	Memory *pagecache.Memory
	Cache  *pagecache.Cache

	// Registry carries the app's Prometheus collectors for /metrics.
	Registry *prometheus.Registry

	Images imagestore.Store
	// LocalImages is set when images live on disk and must be served by the app.
	LocalImages *imagestore.Local

	Janitor *workers.CacheJanitor
}
