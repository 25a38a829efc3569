package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/postboard/internal/app/system/timeouts"
	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by anything with a connectivity check. The Redis
// adapter in bootstrap wraps redis.UniversalClient to fit it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Cache  Pinger // optional
	Log    *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client and logger.
// cache may be nil when the page cache runs in memory.
func NewHandler(client *mongo.Client, cache Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Cache:  cache,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "cache":"memory" }
//
// On DB or cache failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Cache:    "memory",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		h.write(w, http.StatusServiceUnavailable, resp)
		return
	}

	if h.Cache != nil {
		resp.Cache = "connected"
		if err := h.Cache.Ping(ctx); err != nil {
			h.Log.Error("health-check: cache ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Cache = "disconnected"
			resp.Message = "Cache unavailable"
			resp.Error = err.Error()
			h.write(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	h.write(w, http.StatusOK, resp)
}

func (h *Handler) write(w http.ResponseWriter, status int, resp healthResponse) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
