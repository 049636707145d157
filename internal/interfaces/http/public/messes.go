package public

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
	publicdomain "github.com/sngm3741/mess-finder/api/internal/public/domain"
)

func (h *Handler) messSearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		filter, err := listingFilterFromQuery(r)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		page, err := h.queries.Search(ctx, filter, common.PagingFromQuery(r.URL.Query()))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		resp := messListResponse{
			Messes:     make([]messSummaryResponse, 0, len(page.Items)),
			Pagination: common.NewPaginationResponse(page.Pagination),
		}
		for _, l := range page.Items {
			resp.Messes = append(resp.Messes, publicdomain.NewMessSummary(l))
		}
		common.WriteData(h.logger, w, http.StatusOK, "", resp)
	}
}

func (h *Handler) messNearbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		query, err := nearbyQueryFromQuery(r)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		listings, err := h.queries.Nearby(ctx, query)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		resp := messNearbyResponse{Messes: make([]messSummaryResponse, 0, len(listings))}
		for _, l := range listings {
			resp.Messes = append(resp.Messes, publicdomain.NewMessSummary(l))
		}
		resp.Count = len(resp.Messes)
		common.WriteData(h.logger, w, http.StatusOK, "", resp)
	}
}

func (h *Handler) messDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		listing, err := h.queries.Detail(ctx, chi.URLParam(r, "id"), common.PrincipalFromContext(r.Context()))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "", publicdomain.NewMessDetail(*listing))
	}
}

func (h *Handler) messContactHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		listing, err := h.queries.Contact(ctx, chi.URLParam(r, "id"), common.PrincipalFromContext(r.Context()))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "", publicdomain.Contact{
			Phone: listing.ContactPhone,
			Email: listing.ContactEmail,
		})
	}
}

func (h *Handler) messReviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		page, err := h.queries.Reviews(ctx, chi.URLParam(r, "messId"), common.PagingFromQuery(r.URL.Query()))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		resp := reviewListResponse{
			Reviews:    make([]reviewResponse, 0, len(page.Items)),
			Pagination: common.NewPaginationResponse(page.Pagination),
		}
		for _, rv := range page.Items {
			resp.Reviews = append(resp.Reviews, publicdomain.NewReviewView(rv))
		}
		common.WriteData(h.logger, w, http.StatusOK, "", resp)
	}
}

// listingFilterFromQuery は検索クエリを ListingFilter に変換する。不正な数値は 400 扱い。
func listingFilterFromQuery(r *http.Request) (domain.ListingFilter, error) {
	q := r.URL.Query()
	filter := domain.ListingFilter{
		Keyword: strings.TrimSpace(q.Get("search")),
		VegOnly: common.ParseBool(q.Get("isVegOnly")),
	}

	var err error
	if filter.MinPrice, err = intParam(q.Get("minPrice"), "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = intParam(q.Get("maxPrice"), "maxPrice"); err != nil {
		return filter, err
	}
	if filter.MinPrice > 0 && filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		return filter, fmt.Errorf("%w: minPrice must not exceed maxPrice", domain.ErrInvalidInput)
	}
	if filter.MinRating, err = floatParam(q.Get("minRating"), "minRating"); err != nil {
		return filter, err
	}
	if filter.MinRating > domain.MaxRating {
		return filter, fmt.Errorf("%w: minRating must be at most %d", domain.ErrInvalidInput, domain.MaxRating)
	}
	return filter, nil
}

func nearbyQueryFromQuery(r *http.Request) (domain.NearbyQuery, error) {
	q := r.URL.Query()
	lngRaw, latRaw := strings.TrimSpace(q.Get("longitude")), strings.TrimSpace(q.Get("latitude"))
	if lngRaw == "" || latRaw == "" {
		return domain.NearbyQuery{}, fmt.Errorf("%w: longitude and latitude are required", domain.ErrInvalidInput)
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return domain.NearbyQuery{}, fmt.Errorf("%w: longitude must be a number", domain.ErrInvalidInput)
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return domain.NearbyQuery{}, fmt.Errorf("%w: latitude must be a number", domain.ErrInvalidInput)
	}
	point, err := domain.NewCoordinates(lng, lat)
	if err != nil {
		return domain.NearbyQuery{}, err
	}

	query := domain.NearbyQuery{Point: point, VegOnly: common.ParseBool(q.Get("isVegOnly"))}
	if query.RadiusKm, err = floatParam(q.Get("radius"), "radius"); err != nil {
		return domain.NearbyQuery{}, err
	}
	if query.MinRating, err = floatParam(q.Get("minRating"), "minRating"); err != nil {
		return domain.NearbyQuery{}, err
	}
	return query, nil
}

func intParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, name)
	}
	return v, nil
}

func floatParam(raw, name string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	v, ok := common.ParseNonNegativeFloat(raw, 0)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, name)
	}
	return v, nil
}
