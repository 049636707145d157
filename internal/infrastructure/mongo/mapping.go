package mongo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// parseObjectID は 16 進文字列を ObjectID に変換する。解決できない ID は NotFound として扱う。
func parseObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return objectID, nil
}

// translateNoDocuments は mongo.ErrNoDocuments をドメインの NotFound に読み替える。
func translateNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

func mapMessDocument(doc MessDocument) domain.Listing {
	listing := domain.Listing{
		ID:          doc.ID.Hex(),
		OwnerID:     doc.Owner,
		Name:        doc.Name,
		Description: doc.Description,
		Address: domain.Address{
			Street:   doc.Address.Street,
			City:     doc.Address.City,
			State:    doc.Address.State,
			Pincode:  doc.Address.Pincode,
			Landmark: doc.Address.Landmark,
		},
		Menu:          make([]domain.MenuItem, 0, len(doc.Menu)),
		Photos:        append([]string(nil), doc.Photos...),
		Timings:       domain.Timings{Open: domain.TimeOfDay(doc.Timings.Open), Close: domain.TimeOfDay(doc.Timings.Close)},
		PriceRange:    domain.PriceRange{Min: doc.PriceRange.Min, Max: doc.PriceRange.Max},
		ContactPhone:  doc.ContactPhone,
		ContactEmail:  doc.ContactEmail,
		IsVegOnly:     doc.IsVegOnly,
		Status:        domain.ListingStatus(doc.Status),
		StatusReason:  doc.StatusReason,
		ApprovedBy:    doc.ApprovedBy,
		ApprovedAt:    doc.ApprovedAt,
		ModeratedBy:   doc.ModeratedBy,
		ModeratedAt:   doc.ModeratedAt,
		AverageRating: doc.AverageRating,
		TotalReviews:  doc.TotalReviews,
		RatingVersion: doc.RatingVersion,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	if len(doc.Location.Coordinates) == 2 {
		listing.Location = domain.Coordinates{Longitude: doc.Location.Coordinates[0], Latitude: doc.Location.Coordinates[1]}
	}
	for _, item := range doc.Menu {
		listing.Menu = append(listing.Menu, domain.MenuItem{
			Name:        item.Name,
			Price:       item.Price,
			Category:    domain.MealCategory(item.Category),
			IsVeg:       item.IsVeg,
			Description: item.Description,
		})
	}
	for _, day := range doc.AvailableDays {
		listing.AvailableDays = append(listing.AvailableDays, domain.Weekday(day))
	}
	return listing
}

func buildMessDocument(l *domain.Listing, id primitive.ObjectID) MessDocument {
	return MessDocument{
		ID:            id,
		Owner:         l.OwnerID,
		Name:          l.Name,
		Description:   l.Description,
		Location:      geoPoint(l.Location),
		Address:       addressDocument(l.Address),
		Menu:          menuDocuments(l.Menu),
		Photos:        append([]string(nil), l.Photos...),
		Timings:       TimingsDocument{Open: l.Timings.Open.String(), Close: l.Timings.Close.String()},
		PriceRange:    PriceRangeDocument{Min: l.PriceRange.Min, Max: l.PriceRange.Max},
		AvailableDays: l.AvailableDays.Strings(),
		ContactPhone:  l.ContactPhone,
		ContactEmail:  l.ContactEmail,
		IsVegOnly:     l.IsVegOnly,
		Status:        l.Status.String(),
		StatusReason:  l.StatusReason,
		ApprovedBy:    l.ApprovedBy,
		ApprovedAt:    l.ApprovedAt,
		ModeratedBy:   l.ModeratedBy,
		ModeratedAt:   l.ModeratedAt,
		AverageRating: l.AverageRating,
		TotalReviews:  l.TotalReviews,
		RatingVersion: l.RatingVersion,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func geoPoint(c domain.Coordinates) GeoPointDocument {
	return GeoPointDocument{Type: "Point", Coordinates: []float64{c.Longitude, c.Latitude}}
}

func addressDocument(a domain.Address) AddressDocument {
	return AddressDocument{
		Street:   a.Street,
		City:     a.City,
		State:    a.State,
		Pincode:  a.Pincode,
		Landmark: a.Landmark,
	}
}

func menuDocuments(items []domain.MenuItem) []MenuItemDocument {
	docs := make([]MenuItemDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, MenuItemDocument{
			Name:        item.Name,
			Price:       item.Price,
			Category:    string(item.Category),
			IsVeg:       item.IsVeg,
			Description: item.Description,
		})
	}
	return docs
}

func mapReviewDocument(doc ReviewDocument) domain.Review {
	return domain.Review{
		ID:          doc.ID.Hex(),
		ListingID:   doc.Mess.Hex(),
		UserID:      doc.User,
		Rating:      doc.Rating,
		Comment:     doc.Comment,
		IsApproved:  doc.IsApproved,
		ModeratedBy: doc.ModeratedBy,
		ModeratedAt: doc.ModeratedAt,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func mapAccountDocument(doc AccountDocument) domain.Account {
	return domain.Account{
		ID:           doc.ID.Hex(),
		Email:        domain.Email(doc.Email),
		PasswordHash: doc.PasswordHash,
		Name:         doc.Name,
		Phone:        doc.Phone,
		Role:         doc.Role,
		IsActive:     doc.IsActive,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
