package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/respkv/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the admin HTTP router.
type RouterConfig struct {
	// Handler wires the endpoints to the running server.
	Handler handler.Config

	// Logger for request logging.
	Logger *slog.Logger

	// AdminAllowList is the IP/CIDR allowlist for /admin/v1 (empty = no restriction).
	AdminAllowList []string

	// EnableAccessLog logs every request.
	EnableAccessLog bool
}

// NewRouter creates the admin HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hcfg := cfg.Handler
	if hcfg.Logger == nil {
		hcfg.Logger = logger
	}
	h := handler.New(hcfg)

	// Order: Recover -> RequestID -> AccessLog -> Handler
	common := []Middleware{Recover(logger), RequestID()}
	if cfg.EnableAccessLog {
		common = append(common, AccessLog(logger))
	}

	mux := http.NewServeMux()

	// Probes, version and metrics are open.
	open := Chain(h, common...)
	mux.Handle("/health", open)
	mux.Handle("/ready", open)
	mux.Handle("/version", open)
	mux.Handle("/metrics", open)

	admin := append(append([]Middleware{}, common...), NetworkACL(&NetworkACLConfig{
		AllowList: cfg.AdminAllowList,
		Logger:    logger,
	}))
	mux.Handle("/admin/v1/", Chain(h, admin...))

	return mux
}
