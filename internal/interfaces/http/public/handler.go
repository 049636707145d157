package public

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	accountapp "github.com/sngm3741/mess-finder/api/internal/account/application"
	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
	publicapp "github.com/sngm3741/mess-finder/api/internal/public/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger   logrus.FieldLogger
	queries  publicapp.ListingQueryService
	reviews  publicapp.ReviewCommandService
	accounts accountapp.Service
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger   logrus.FieldLogger
	Queries  publicapp.ListingQueryService
	Reviews  publicapp.ReviewCommandService
	Accounts accountapp.Service
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		logger:   logger,
		queries:  cfg.Queries,
		reviews:  cfg.Reviews,
		accounts: cfg.Accounts,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authn *common.Authenticator) {
	userOnly := common.RequireRole(h.logger, domain.RoleUser)

	r.Get("/messes", h.messSearchHandler())
	r.Get("/messes/nearby", h.messNearbyHandler())
	r.With(authn.Optional).Get("/messes/{id}", h.messDetailHandler())
	r.With(authn.Require).Get("/messes/{id}/contact", h.messContactHandler())

	r.Get("/reviews/mess/{messId}", h.messReviewsHandler())
	r.With(authn.Require, userOnly).Post("/reviews", h.reviewCreateHandler())
	r.With(authn.Require, userOnly).Put("/reviews/{id}", h.reviewUpdateHandler())
	r.With(authn.Require, userOnly).Delete("/reviews/{id}", h.reviewDeleteHandler())

	r.With(authn.Require).Get("/auth/me", h.authMeHandler())
	r.Post("/auth/owner/register", h.ownerRegisterHandler())
	r.Post("/auth/owner/login", h.loginHandler(domain.RoleOwner))
	r.Post("/auth/admin/login", h.loginHandler(domain.RoleAdmin))
}

// userPrincipal は RequireRole(user) 通過後のコンテキストから UserPrincipal を取り出す。
func userPrincipal(r *http.Request) (domain.UserPrincipal, bool) {
	p, ok := common.PrincipalFromContext(r.Context()).(domain.UserPrincipal)
	return p, ok
}
