package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
)

func (h *Handler) reviewPendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		page, err := h.reviews.Pending(ctx, common.PagingFromQuery(r.URL.Query()))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		resp := adminReviewListResponse{
			Reviews:    make([]adminReviewResponse, 0, len(page.Items)),
			Pagination: common.NewPaginationResponse(page.Pagination),
		}
		for _, rv := range page.Items {
			resp.Reviews = append(resp.Reviews, newAdminReviewResponse(rv))
		}
		common.WriteData(h.logger, w, http.StatusOK, "", resp)
	}
}

func (h *Handler) reviewApproveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := adminPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusForbidden, "admin access required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		review, err := h.reviews.Approve(ctx, chi.URLParam(r, "id"), actor)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "review approved", newAdminReviewResponse(*review))
	}
}

func (h *Handler) reviewDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := adminPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusForbidden, "admin access required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		if _, err := h.reviews.Delete(ctx, chi.URLParam(r, "id"), actor); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "review deleted", nil)
	}
}

func (h *Handler) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		stats, err := h.stats.Platform(ctx)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "", newStatsResponse(*stats))
	}
}
