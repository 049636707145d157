package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ReviewRepository はレビュー集約を MongoDB で扱う実装リポジトリ。
type ReviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository はレビューコレクションを束縛したリポジトリを構築する。
func NewReviewRepository(db *mongo.Database, collection string) *ReviewRepository {
	return &ReviewRepository{collection: db.Collection(collection)}
}

// Create はレビューを挿入する。{mess, user} のユニーク制約違反は DuplicateReview に読み替える。
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	messID, err := parseObjectID(review.ListingID)
	if err != nil {
		return err
	}
	doc := ReviewDocument{
		ID:         primitive.NewObjectID(),
		Mess:       messID,
		User:       review.UserID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		IsApproved: review.IsApproved,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateReview
		}
		return err
	}
	review.ID = doc.ID.Hex()
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc ReviewDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translateNoDocuments(err)
	}
	review := mapReviewDocument(doc)
	return &review, nil
}

// Find は掲載・承認状態で絞り込んだレビューを作成日時順に返す。
func (r *ReviewRepository) Find(ctx context.Context, filter domain.ReviewFilter, paging domain.Paging) ([]domain.Review, int, error) {
	query, err := buildReviewFilter(filter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Review{}, 0, nil
		}
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	dir := -1
	if paging.Order == domain.SortOrderAscending {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: dir}})
	if paging.Limit > 0 {
		opts.SetSkip(int64(paging.Skip())).SetLimit(int64(paging.Limit))
	}
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, mapReviewDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return reviews, int(total), nil
}

// UpdateByAuthor は投稿者本人のレビューに限り内容を差し替え、承認状態をリセットする。
// 変更前のドキュメントを取得し、承認済みだったかどうかを呼び出し側へ返す。
func (r *ReviewRepository) UpdateByAuthor(ctx context.Context, id, userID string, patch domain.ReviewPatch, at time.Time) (*domain.Review, *domain.Review, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, nil, err
	}
	set := bson.M{"isApproved": false, "updatedAt": at}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.Comment != nil {
		set["comment"] = *patch.Comment
	}
	update := bson.M{
		"$set":   set,
		"$unset": bson.M{"moderatedBy": "", "moderatedAt": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var doc ReviewDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID, "user": userID}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, r.missOrForbidden(ctx, objectID)
	}
	if err != nil {
		return nil, nil, err
	}
	before := mapReviewDocument(doc)
	after := before
	after.ApplyEdit(patch, at)
	return &before, &after, nil
}

// DeleteByAuthor は投稿者本人のレビューのみ削除する。
func (r *ReviewRepository) DeleteByAuthor(ctx context.Context, id, userID string) (*domain.Review, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc ReviewDocument
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID, "user": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missOrForbidden(ctx, objectID)
	}
	if err != nil {
		return nil, err
	}
	review := mapReviewDocument(doc)
	return &review, nil
}

// Approve は未承認のレビューのみ承認者を記録して承認する。既に承認済みなら変更せず現在値を返す。
func (r *ReviewRepository) Approve(ctx context.Context, id, moderatorID string, at time.Time) (*domain.Review, bool, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, false, err
	}
	update := bson.M{"$set": bson.M{
		"isApproved":  true,
		"moderatedBy": moderatorID,
		"moderatedAt": at,
		"updatedAt":   at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ReviewDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID, "isApproved": false}, update, opts).Decode(&doc)
	if err == nil {
		review := mapReviewDocument(doc)
		return &review, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Delete は承認状態に関係なくレビューを削除する。
func (r *ReviewRepository) Delete(ctx context.Context, id string) (*domain.Review, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc ReviewDocument
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, translateNoDocuments(err)
	}
	review := mapReviewDocument(doc)
	return &review, nil
}

// CountByApproval は承認済み/未承認のレビュー件数を返す。
func (r *ReviewRepository) CountByApproval(ctx context.Context) (int, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$isApproved", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var approved, pending int
	for cursor.Next(ctx) {
		var row struct {
			Approved bool `bson:"_id"`
			Count    int  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return 0, 0, err
		}
		if row.Approved {
			approved = row.Count
		} else {
			pending = row.Count
		}
	}
	if err := cursor.Err(); err != nil {
		return 0, 0, err
	}
	return approved, pending, nil
}

// TallyApproved は対象掲載の承認済みレビューを毎回全件集計する。
func (r *ReviewRepository) TallyApproved(ctx context.Context, listingID string) (domain.RatingTally, error) {
	messID, err := parseObjectID(listingID)
	if err != nil {
		return domain.RatingTally{}, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"mess": messID, "isApproved": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"sum":   bson.M{"$sum": "$rating"},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.RatingTally{}, err
	}
	defer cursor.Close(ctx)

	var tally domain.RatingTally
	if cursor.Next(ctx) {
		var agg struct {
			Count int `bson:"count"`
			Sum   int `bson:"sum"`
		}
		if err := cursor.Decode(&agg); err != nil {
			return domain.RatingTally{}, err
		}
		tally = domain.RatingTally{Count: agg.Count, Sum: agg.Sum}
	}
	if err := cursor.Err(); err != nil {
		return domain.RatingTally{}, err
	}
	return tally, nil
}

// Drop はシード用にコレクションを空にする。
func (r *ReviewRepository) Drop(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (r *ReviewRepository) missOrForbidden(ctx context.Context, objectID primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrForbidden
	}
	return domain.ErrNotFound
}

func buildReviewFilter(filter domain.ReviewFilter) (bson.M, error) {
	query := bson.M{}
	if filter.ListingID != "" {
		messID, err := parseObjectID(filter.ListingID)
		if err != nil {
			return nil, err
		}
		query["mess"] = messID
	}
	if filter.Approved != nil {
		query["isApproved"] = *filter.Approved
	}
	return query, nil
}
