package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	adminapp "github.com/sngm3741/mess-finder/api/internal/admin/application"
	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger   logrus.FieldLogger
	listings adminapp.ListingModerationService
	reviews  adminapp.ReviewModerationService
	stats    adminapp.StatsService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger   logrus.FieldLogger
	Listings adminapp.ListingModerationService
	Reviews  adminapp.ReviewModerationService
	Stats    adminapp.StatsService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		logger:   logger,
		listings: cfg.Listings,
		reviews:  cfg.Reviews,
		stats:    cfg.Stats,
	}
}

// Register mounts admin routes onto router. The caller is expected to have
// installed authentication and the admin role check on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/messes/pending", h.messPendingHandler())
	r.Get("/messes", h.messListHandler())
	r.Put("/messes/{id}/approve", h.messTransitionHandler(domain.ActionApprove))
	r.Put("/messes/{id}/reject", h.messTransitionHandler(domain.ActionReject))
	r.Put("/messes/{id}/suspend", h.messTransitionHandler(domain.ActionSuspend))
	r.Put("/messes/{id}/reactivate", h.messTransitionHandler(domain.ActionReactivate))

	r.Get("/reviews/pending", h.reviewPendingHandler())
	r.Put("/reviews/{id}/approve", h.reviewApproveHandler())
	r.Delete("/reviews/{id}", h.reviewDeleteHandler())

	r.Get("/stats", h.statsHandler())
}

// adminPrincipal は RequireRole(admin) 通過後のコンテキストから AdminPrincipal を取り出す。
func adminPrincipal(r *http.Request) (domain.AdminPrincipal, bool) {
	p, ok := common.PrincipalFromContext(r.Context()).(domain.AdminPrincipal)
	return p, ok
}
