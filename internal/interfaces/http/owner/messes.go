package owner

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
)

func (h *Handler) messCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusForbidden, "owner access required")
			return
		}

		var req createMessRequest
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		listing, err := h.listings.Create(ctx, owner, req.toInput())
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusCreated, "mess submitted for approval", newOwnerMessResponse(*listing))
	}
}

func (h *Handler) messUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusForbidden, "owner access required")
			return
		}

		var req updateMessRequest
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		listing, err := h.listings.Update(ctx, owner, chi.URLParam(r, "id"), req.toUpdate())
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "mess updated", newOwnerMessResponse(*listing))
	}
}

func (h *Handler) dashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusForbidden, "owner access required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		listings, pagination, err := h.listings.ListMine(ctx, owner, common.PagingFromQuery(r.URL.Query()))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		resp := dashboardResponse{
			Messes:     make([]ownerMessResponse, 0, len(listings)),
			Pagination: common.NewPaginationResponse(pagination),
		}
		for _, l := range listings {
			resp.Messes = append(resp.Messes, newOwnerMessResponse(l))
		}
		common.WriteData(h.logger, w, http.StatusOK, "", resp)
	}
}
