package public

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
	publicapp "github.com/sngm3741/mess-finder/api/internal/public/application"
	publicdomain "github.com/sngm3741/mess-finder/api/internal/public/domain"
)

func (h *Handler) reviewCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, ok := userPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req createReviewRequest
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		review, err := h.reviews.Create(ctx, author, publicapp.CreateReviewCommand{
			ListingID: req.MessID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusCreated, "review submitted for moderation", publicdomain.NewReviewView(*review))
	}
}

func (h *Handler) reviewUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, ok := userPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req updateReviewRequest
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		review, err := h.reviews.Update(ctx, author, chi.URLParam(r, "id"), domain.ReviewPatch{
			Rating:  req.Rating,
			Comment: req.Comment,
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "review updated and sent for moderation", publicdomain.NewReviewView(*review))
	}
}

func (h *Handler) reviewDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, ok := userPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		if err := h.reviews.Delete(ctx, author, chi.URLParam(r, "id")); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "review deleted", nil)
	}
}
