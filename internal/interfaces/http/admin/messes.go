package admin

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	adminapp "github.com/sngm3741/mess-finder/api/internal/admin/application"
	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
)

func (h *Handler) messPendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		page, err := h.listings.Pending(ctx, common.PagingFromQuery(r.URL.Query()))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "", newAdminMessListResponse(page))
	}
}

// messListHandler は ?status= で絞り込んだ一覧を返す。未指定なら全ステータス。
func (h *Handler) messListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status domain.ListingStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := domain.ParseListingStatus(raw)
			if err != nil {
				common.WriteError(h.logger, w, err)
				return
			}
			status = parsed
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		page, err := h.listings.List(ctx, status, common.PagingFromQuery(r.URL.Query()))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "", newAdminMessListResponse(page))
	}
}

func (h *Handler) messTransitionHandler(action domain.ListingAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := adminPrincipal(r)
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusForbidden, "admin access required")
			return
		}

		var req moderationRequest
		if err := common.DecodeOptionalJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		id := chi.URLParam(r, "id")
		var (
			listing *domain.Listing
			err     error
		)
		switch action {
		case domain.ActionApprove:
			listing, err = h.listings.Approve(ctx, id, actor)
		case domain.ActionReject:
			listing, err = h.listings.Reject(ctx, id, actor, req.Reason)
		case domain.ActionSuspend:
			listing, err = h.listings.Suspend(ctx, id, actor, req.Reason)
		case domain.ActionReactivate:
			listing, err = h.listings.Reactivate(ctx, id, actor)
		default:
			err = fmt.Errorf("%w: unknown listing action: %s", domain.ErrInvalidInput, action)
		}
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, transitionMessage(action), newAdminMessResponse(*listing))
	}
}

func transitionMessage(action domain.ListingAction) string {
	switch action {
	case domain.ActionApprove:
		return "mess approved"
	case domain.ActionReject:
		return "mess rejected"
	case domain.ActionSuspend:
		return "mess suspended"
	case domain.ActionReactivate:
		return "mess reactivated"
	}
	return ""
}

func newAdminMessListResponse(page *adminapp.ListingPage) adminMessListResponse {
	resp := adminMessListResponse{
		Messes:     make([]adminMessResponse, 0, len(page.Items)),
		Pagination: common.NewPaginationResponse(page.Pagination),
	}
	for _, l := range page.Items {
		resp.Messes = append(resp.Messes, newAdminMessResponse(l))
	}
	return resp
}
