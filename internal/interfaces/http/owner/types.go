package owner

import (
	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
	ownerapp "github.com/sngm3741/mess-finder/api/internal/owner/application"
	publicdomain "github.com/sngm3741/mess-finder/api/internal/public/domain"
)

type locationRequest struct {
	Coordinates []float64 `json:"coordinates" validate:"len=2"`
}

type addressRequest struct {
	Street   string `json:"street" validate:"max=200"`
	City     string `json:"city" validate:"required,max=100"`
	State    string `json:"state" validate:"max=100"`
	Pincode  string `json:"pincode" validate:"max=20"`
	Landmark string `json:"landmark" validate:"max=200"`
}

type menuItemRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Price       int    `json:"price" validate:"min=0"`
	Category    string `json:"category" validate:"required,mealcategory"`
	IsVeg       bool   `json:"isVeg"`
	Description string `json:"description" validate:"max=300"`
}

type timingsRequest struct {
	Open  string `json:"open" validate:"required,hhmm"`
	Close string `json:"close" validate:"required,hhmm"`
}

type priceRangeRequest struct {
	Min int `json:"min" validate:"min=0"`
	Max int `json:"max" validate:"min=0"`
}

type createMessRequest struct {
	Name          string            `json:"name" validate:"required,max=100"`
	Description   string            `json:"description" validate:"max=1000"`
	Location      locationRequest   `json:"location"`
	Address       addressRequest    `json:"address"`
	Menu          []menuItemRequest `json:"menu" validate:"omitempty,dive"`
	Photos        []string          `json:"photos"`
	Timings       timingsRequest    `json:"timings"`
	PriceRange    priceRangeRequest `json:"priceRange"`
	AvailableDays []string          `json:"availableDays" validate:"omitempty,dive,weekday"`
	ContactPhone  string            `json:"contactPhone" validate:"max=20"`
	ContactEmail  string            `json:"contactEmail" validate:"omitempty,email"`
	IsVegOnly     bool              `json:"isVegOnly"`
}

// updateMessRequest は部分更新。nil のフィールドは変更しない。
type updateMessRequest struct {
	Name          *string            `json:"name" validate:"omitempty,max=100"`
	Description   *string            `json:"description" validate:"omitempty,max=1000"`
	Location      *locationRequest   `json:"location" validate:"omitempty"`
	Address       *addressRequest    `json:"address" validate:"omitempty"`
	Menu          *[]menuItemRequest `json:"menu"`
	Photos        *[]string          `json:"photos"`
	Timings       *timingsRequest    `json:"timings" validate:"omitempty"`
	PriceRange    *priceRangeRequest `json:"priceRange" validate:"omitempty"`
	AvailableDays *[]string          `json:"availableDays"`
	ContactPhone  *string            `json:"contactPhone" validate:"omitempty,max=20"`
	ContactEmail  *string            `json:"contactEmail"`
	IsVegOnly     *bool              `json:"isVegOnly"`
}

// ownerMessResponse は詳細ビューに審査結果の理由を加える。
type ownerMessResponse struct {
	publicdomain.MessDetail
	StatusReason string `json:"statusReason,omitempty"`
}

type dashboardResponse struct {
	Messes     []ownerMessResponse       `json:"messes"`
	Pagination common.PaginationResponse `json:"pagination"`
}

func newOwnerMessResponse(l domain.Listing) ownerMessResponse {
	return ownerMessResponse{
		MessDetail:   publicdomain.NewMessDetail(l),
		StatusReason: l.StatusReason,
	}
}

func (req createMessRequest) toInput() ownerapp.ListingInput {
	return ownerapp.ListingInput{
		Name:          req.Name,
		Description:   req.Description,
		Longitude:     req.Location.Coordinates[0],
		Latitude:      req.Location.Coordinates[1],
		Address:       req.Address.toDomain(),
		Menu:          menuInputs(req.Menu),
		Photos:        req.Photos,
		OpenTime:      req.Timings.Open,
		CloseTime:     req.Timings.Close,
		MinPrice:      req.PriceRange.Min,
		MaxPrice:      req.PriceRange.Max,
		AvailableDays: req.AvailableDays,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		IsVegOnly:     req.IsVegOnly,
	}
}

func (req updateMessRequest) toUpdate() ownerapp.ListingUpdate {
	update := ownerapp.ListingUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Photos:        req.Photos,
		AvailableDays: req.AvailableDays,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		IsVegOnly:     req.IsVegOnly,
	}
	if req.Location != nil && len(req.Location.Coordinates) == 2 {
		lng, lat := req.Location.Coordinates[0], req.Location.Coordinates[1]
		update.Longitude, update.Latitude = &lng, &lat
	}
	if req.Address != nil {
		addr := req.Address.toDomain()
		update.Address = &addr
	}
	if req.Menu != nil {
		menu := menuInputs(*req.Menu)
		update.Menu = &menu
	}
	if req.Timings != nil {
		openAt, closeAt := req.Timings.Open, req.Timings.Close
		update.OpenTime, update.CloseTime = &openAt, &closeAt
	}
	if req.PriceRange != nil {
		lo, hi := req.PriceRange.Min, req.PriceRange.Max
		update.MinPrice, update.MaxPrice = &lo, &hi
	}
	return update
}

func (a addressRequest) toDomain() domain.Address {
	return domain.Address{
		Street:   a.Street,
		City:     a.City,
		State:    a.State,
		Pincode:  a.Pincode,
		Landmark: a.Landmark,
	}
}

func menuInputs(items []menuItemRequest) []ownerapp.MenuItemInput {
	out := make([]ownerapp.MenuItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, ownerapp.MenuItemInput{
			Name:        item.Name,
			Price:       item.Price,
			Category:    item.Category,
			IsVeg:       item.IsVeg,
			Description: item.Description,
		})
	}
	return out
}
