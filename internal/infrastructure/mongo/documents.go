package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPointDocument は 2dsphere インデックス対象の GeoJSON Point。座標は [経度, 緯度]。
type GeoPointDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

// AddressDocument はメスの住所を保持する埋め込みドキュメント。
type AddressDocument struct {
	Street   string `bson:"street,omitempty"`
	City     string `bson:"city"`
	State    string `bson:"state,omitempty"`
	Pincode  string `bson:"pincode,omitempty"`
	Landmark string `bson:"landmark,omitempty"`
}

// MenuItemDocument はメニュー 1 品分の埋め込みドキュメント。
type MenuItemDocument struct {
	Name        string `bson:"name"`
	Price       int    `bson:"price"`
	Category    string `bson:"category"`
	IsVeg       bool   `bson:"isVeg"`
	Description string `bson:"description,omitempty"`
}

type TimingsDocument struct {
	Open  string `bson:"open"`
	Close string `bson:"close"`
}

type PriceRangeDocument struct {
	Min int `bson:"min"`
	Max int `bson:"max"`
}

// MessDocument は MongoDB 上でのメス掲載スキーマを Go 構造体として表現したもの。
type MessDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Owner         string             `bson:"owner"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	Location      GeoPointDocument   `bson:"location"`
	Address       AddressDocument    `bson:"address"`
	Menu          []MenuItemDocument `bson:"menu"`
	Photos        []string           `bson:"photos,omitempty"`
	Timings       TimingsDocument    `bson:"timings"`
	PriceRange    PriceRangeDocument `bson:"priceRange"`
	AvailableDays []string           `bson:"availableDays,omitempty"`
	ContactPhone  string             `bson:"contactPhone,omitempty"`
	ContactEmail  string             `bson:"contactEmail,omitempty"`
	IsVegOnly     bool               `bson:"isVegOnly"`
	Status        string             `bson:"status"`
	StatusReason  string             `bson:"statusReason,omitempty"`
	ApprovedBy    string             `bson:"approvedBy,omitempty"`
	ApprovedAt    *time.Time         `bson:"approvedAt,omitempty"`
	ModeratedBy   string             `bson:"moderatedBy,omitempty"`
	ModeratedAt   *time.Time         `bson:"moderatedAt,omitempty"`
	AverageRating float64            `bson:"averageRating"`
	TotalReviews  int                `bson:"totalReviews"`
	RatingVersion int64              `bson:"ratingVersion"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

// ReviewDocument はレビューのスキーマ。{mess, user} にユニークインデックスを張る。
type ReviewDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Mess        primitive.ObjectID `bson:"mess"`
	User        string             `bson:"user"`
	Rating      int                `bson:"rating"`
	Comment     string             `bson:"comment"`
	IsApproved  bool               `bson:"isApproved"`
	ModeratedBy string             `bson:"moderatedBy,omitempty"`
	ModeratedAt *time.Time         `bson:"moderatedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// AccountDocument はオーナー/管理者アカウントのスキーマ。email はユニーク。
type AccountDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	Name         string             `bson:"name"`
	Phone        string             `bson:"phone,omitempty"`
	Role         string             `bson:"role"`
	IsActive     bool               `bson:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}
