package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ListingRepository はメス掲載集約の Mongo 実装。公開・オーナー・管理者の各ポートを満たす。
type ListingRepository struct {
	collection *mongo.Collection
}

// NewListingRepository は MongoDB コレクションを束縛した ListingRepository を生成する。
func NewListingRepository(db *mongo.Database, collection string) *ListingRepository {
	return &ListingRepository{collection: db.Collection(collection)}
}

// Create は新しい掲載を挿入し、採番した ID を listing に書き戻す。
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	id := primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, buildMessDocument(listing, id)); err != nil {
		return err
	}
	listing.ID = id.Hex()
	return nil
}

// FindByID は 16 進 ObjectID を受け取り単一掲載を返す。
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc MessDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translateNoDocuments(err)
	}
	listing := mapMessDocument(doc)
	return &listing, nil
}

// Find は検索条件とページングを Mongo クエリへ落とし込み、該当件数と合わせて返す。
func (r *ListingRepository) Find(ctx context.Context, filter domain.ListingFilter, paging domain.Paging) ([]domain.Listing, int, error) {
	query := buildListingFilter(filter)
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(buildListingSort(paging))
	if collation := buildListingCollation(paging); collation != nil {
		opts.SetCollation(collation)
	}
	if paging.Limit > 0 {
		opts.SetSkip(int64(paging.Skip())).SetLimit(int64(paging.Limit))
	}
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	listings, err := decodeListings(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return listings, int(total), nil
}

// FindNearby は 2dsphere インデックスに対する $near で承認済み掲載を近い順に返す。
func (r *ListingRepository) FindNearby(ctx context.Context, q domain.NearbyQuery, limit int) ([]domain.Listing, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, buildNearbyFilter(q), opts)
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

// ApplyTransition はステータスのガードを含む単一の条件付き更新で遷移を適用する。
// 一致しなかった場合のみ存在確認を行い、NotFound と InvalidStateTransition を区別する。
func (r *ListingRepository) ApplyTransition(ctx context.Context, id string, t domain.ListingTransition) (*domain.Listing, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	from := make(bson.A, 0, len(t.From))
	for _, s := range t.From {
		from = append(from, s.String())
	}
	filter := bson.M{"_id": objectID, "status": bson.M{"$in": from}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc MessDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, buildTransitionUpdate(t), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if exists, existsErr := r.exists(ctx, bson.M{"_id": objectID}); existsErr != nil {
			return nil, existsErr
		} else if exists {
			return nil, domain.ErrInvalidStateTransition
		}
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	listing := mapMessDocument(doc)
	return &listing, nil
}

// UpdateByOwner はオーナー本人の掲載に限り編集内容を反映する。ステータス関連のフィールドは触らない。
func (r *ListingRepository) UpdateByOwner(ctx context.Context, id, ownerID string, patch domain.ListingPatch, at time.Time) (*domain.Listing, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": buildPatchSet(patch, at)}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc MessDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID, "owner": ownerID}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if exists, existsErr := r.exists(ctx, bson.M{"_id": objectID}); existsErr != nil {
			return nil, existsErr
		} else if exists {
			return nil, domain.ErrForbidden
		}
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	listing := mapMessDocument(doc)
	return &listing, nil
}

// RatingVersion は評価値の書き込み世代を返す。
func (r *ListingRepository) RatingVersion(ctx context.Context, id string) (int64, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}
	var doc struct {
		RatingVersion int64 `bson:"ratingVersion"`
	}
	opts := options.FindOne().SetProjection(bson.M{"ratingVersion": 1})
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return doc.RatingVersion, nil
}

// SetRating は集計済みの評価値を掲載に書き込む。
// 世代が expected と一致する場合のみ更新し、一致しなければ domain.ErrStaleRating を返す。
func (r *ListingRepository) SetRating(ctx context.Context, id string, summary domain.RatingSummary, expected int64) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, buildRatingVersionFilter(objectID, expected), bson.M{
		"$set": bson.M{
			"averageRating": summary.AverageRating,
			"totalReviews":  summary.TotalReviews,
		},
		"$inc": bson.M{"ratingVersion": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		exists, err := r.exists(ctx, bson.M{"_id": objectID})
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrStaleRating
		}
		return domain.ErrNotFound
	}
	return nil
}

// buildRatingVersionFilter は世代比較の条件を組み立てる。世代未設定の旧ドキュメントは 0 とみなす。
func buildRatingVersionFilter(id primitive.ObjectID, expected int64) bson.M {
	if expected == 0 {
		return bson.M{"_id": id, "ratingVersion": bson.M{"$in": bson.A{int64(0), nil}}}
	}
	return bson.M{"_id": id, "ratingVersion": expected}
}

// CountByStatus はステータス別の掲載件数を集計する。
func (r *ListingRepository) CountByStatus(ctx context.Context) (map[domain.ListingStatus]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[domain.ListingStatus]int, len(domain.ListingStatuses))
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[domain.ListingStatus(row.Status)] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Drop はシード用にコレクションを空にする。
func (r *ListingRepository) Drop(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (r *ListingRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]domain.Listing, error) {
	defer cursor.Close(ctx)
	listings := make([]domain.Listing, 0)
	for cursor.Next(ctx) {
		var doc MessDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		listings = append(listings, mapMessDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// buildListingFilter は ListingFilter を Mongo のフィルタへ変換する。
// 価格は範囲の重なりで判定する。
func buildListingFilter(filter domain.ListingFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status.String()
	}
	if filter.OwnerID != "" {
		query["owner"] = filter.OwnerID
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		regex := primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"description": regex},
			bson.M{"address.city": regex},
		}
	}
	if filter.MinPrice > 0 {
		query["priceRange.max"] = bson.M{"$gte": filter.MinPrice}
	}
	if filter.MaxPrice > 0 {
		query["priceRange.min"] = bson.M{"$lte": filter.MaxPrice}
	}
	if filter.VegOnly {
		query["isVegOnly"] = true
	}
	if filter.MinRating > 0 {
		query["averageRating"] = bson.M{"$gte": filter.MinRating}
	}
	return query
}

// buildListingSort は並び順を組み立てる。同値の場合は _id で順序を固定する。
func buildListingSort(paging domain.Paging) bson.D {
	key := paging.SortBy
	if key == "" {
		key = domain.SortByRating
	}
	dir := -1
	if paging.Order == domain.SortOrderAscending {
		dir = 1
	}
	return bson.D{{Key: key, Value: dir}, {Key: "_id", Value: 1}}
}

// buildListingCollation は名前順のときだけ大文字小文字を区別しない照合順序を返す。
func buildListingCollation(paging domain.Paging) *options.Collation {
	if paging.SortBy != domain.SortByName {
		return nil
	}
	return &options.Collation{Locale: domain.NameCollationLocale, Strength: 2}
}

func buildNearbyFilter(q domain.NearbyQuery) bson.M {
	query := bson.M{
		"status": domain.ListingApproved.String(),
		"location": bson.M{"$near": bson.M{
			"$geometry": bson.M{
				"type":        "Point",
				"coordinates": bson.A{q.Point.Longitude, q.Point.Latitude},
			},
			"$maxDistance": q.RadiusKm * 1000,
		}},
	}
	if q.VegOnly {
		query["isVegOnly"] = true
	}
	if q.MinRating > 0 {
		query["averageRating"] = bson.M{"$gte": q.MinRating}
	}
	return query
}

func buildTransitionUpdate(t domain.ListingTransition) bson.M {
	set := bson.M{
		"status":      t.To.String(),
		"moderatedBy": t.ActorID,
		"moderatedAt": t.At,
		"updatedAt":   t.At,
	}
	if t.Reason != "" {
		set["statusReason"] = t.Reason
	}
	if t.MarkApproved {
		set["approvedBy"] = t.ActorID
		set["approvedAt"] = t.At
	}
	update := bson.M{"$set": set}
	if t.ClearReason {
		update["$unset"] = bson.M{"statusReason": ""}
	}
	return update
}

func buildPatchSet(p domain.ListingPatch, at time.Time) bson.M {
	set := bson.M{"updatedAt": at}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Location != nil {
		set["location"] = geoPoint(*p.Location)
	}
	if p.Address != nil {
		set["address"] = addressDocument(*p.Address)
	}
	if p.Menu != nil {
		set["menu"] = menuDocuments(*p.Menu)
	}
	if p.Photos != nil {
		set["photos"] = append([]string{}, (*p.Photos)...)
	}
	if p.Timings != nil {
		set["timings"] = TimingsDocument{Open: p.Timings.Open.String(), Close: p.Timings.Close.String()}
	}
	if p.PriceRange != nil {
		set["priceRange"] = PriceRangeDocument{Min: p.PriceRange.Min, Max: p.PriceRange.Max}
	}
	if p.AvailableDays != nil {
		set["availableDays"] = p.AvailableDays.Strings()
	}
	if p.ContactPhone != nil {
		set["contactPhone"] = *p.ContactPhone
	}
	if p.ContactEmail != nil {
		set["contactEmail"] = *p.ContactEmail
	}
	if p.IsVegOnly != nil {
		set["isVegOnly"] = *p.IsVegOnly
	}
	return set
}
