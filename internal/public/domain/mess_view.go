package domain

import (
	"time"

	core "github.com/sngm3741/mess-finder/api/internal/domain"
)

// MessSummary is the card shown in search and nearby results.
type MessSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Location      GeoPoint   `json:"location"`
	Address       Address    `json:"address"`
	PriceRange    PriceRange `json:"priceRange"`
	Timings       Timings    `json:"timings"`
	IsVegOnly     bool       `json:"isVegOnly"`
	Photos        []string   `json:"photos,omitempty"`
	AverageRating float64    `json:"averageRating"`
	TotalReviews  int        `json:"totalReviews"`
}

// MessDetail augments MessSummary with menu and, for signed-in viewers, contact details.
type MessDetail struct {
	MessSummary
	OwnerID       string     `json:"ownerId"`
	Menu          []MenuItem `json:"menu"`
	AvailableDays []string   `json:"availableDays"`
	Contact       *Contact   `json:"contact,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

// GeoPoint is a GeoJSON point; coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type Address struct {
	Street   string `json:"street,omitempty"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Landmark string `json:"landmark,omitempty"`
}

type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Timings struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type MenuItem struct {
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Category    string `json:"category"`
	IsVeg       bool   `json:"isVeg"`
	Description string `json:"description,omitempty"`
}

type Contact struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// NewMessSummary projects a listing onto its public card.
func NewMessSummary(l core.Listing) MessSummary {
	return MessSummary{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Location: GeoPoint{
			Type:        "Point",
			Coordinates: [2]float64{l.Location.Longitude, l.Location.Latitude},
		},
		Address: Address{
			Street:   l.Address.Street,
			City:     l.Address.City,
			State:    l.Address.State,
			Pincode:  l.Address.Pincode,
			Landmark: l.Address.Landmark,
		},
		PriceRange:    PriceRange{Min: l.PriceRange.Min, Max: l.PriceRange.Max},
		Timings:       Timings{Open: l.Timings.Open.String(), Close: l.Timings.Close.String()},
		IsVegOnly:     l.IsVegOnly,
		Photos:        append([]string(nil), l.Photos...),
		AverageRating: l.AverageRating,
		TotalReviews:  l.TotalReviews,
	}
}

// NewMessDetail projects a listing onto its detail view. Contact is omitted when
// the listing carries none (anonymous viewers get WithoutContact()).
func NewMessDetail(l core.Listing) MessDetail {
	detail := MessDetail{
		MessSummary:   NewMessSummary(l),
		OwnerID:       l.OwnerID,
		Menu:          make([]MenuItem, 0, len(l.Menu)),
		AvailableDays: l.AvailableDays.Strings(),
		Status:        l.Status.String(),
		CreatedAt:     formatTime(l.CreatedAt),
		UpdatedAt:     formatTime(l.UpdatedAt),
	}
	for _, item := range l.Menu {
		detail.Menu = append(detail.Menu, MenuItem{
			Name:        item.Name,
			Price:       item.Price,
			Category:    string(item.Category),
			IsVeg:       item.IsVeg,
			Description: item.Description,
		})
	}
	if l.ContactPhone != "" || l.ContactEmail != "" {
		detail.Contact = &Contact{Phone: l.ContactPhone, Email: l.ContactEmail}
	}
	return detail
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
