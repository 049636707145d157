package owner

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
	ownerapp "github.com/sngm3741/mess-finder/api/internal/owner/application"
)

// Handler wires owner HTTP endpoints to application services.
type Handler struct {
	logger   logrus.FieldLogger
	listings ownerapp.ListingCommandService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger   logrus.FieldLogger
	Listings ownerapp.ListingCommandService
}

// NewHandler constructs an owner HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{logger: logger, listings: cfg.Listings}
}

// Register mounts owner routes onto r. Every route requires an owner token.
func (h *Handler) Register(r chi.Router, authn *common.Authenticator) {
	ownerOnly := common.RequireRole(h.logger, domain.RoleOwner)

	r.With(authn.Require, ownerOnly).Post("/messes", h.messCreateHandler())
	r.With(authn.Require, ownerOnly).Put("/messes/{id}", h.messUpdateHandler())
	r.With(authn.Require, ownerOnly).Get("/messes/owner/dashboard", h.dashboardHandler())
}

func ownerPrincipal(r *http.Request) (domain.OwnerPrincipal, bool) {
	p, ok := common.PrincipalFromContext(r.Context()).(domain.OwnerPrincipal)
	return p, ok
}
