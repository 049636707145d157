package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// AccountRepository はオーナー/管理者アカウントの Mongo 実装。
type AccountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database, collection string) *AccountRepository {
	return &AccountRepository{collection: db.Collection(collection)}
}

// Create は email のユニーク制約違反を DuplicateAccount に読み替える。
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	doc := accountDocument(account, primitive.NewObjectID())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateAccount
		}
		return err
	}
	account.ID = doc.ID.Hex()
	return nil
}

// InsertIfAbsent は email をキーに $setOnInsert で upsert する。既存アカウントは変更しない。
func (r *AccountRepository) InsertIfAbsent(ctx context.Context, account *domain.Account) (bool, error) {
	doc := accountDocument(account, primitive.NewObjectID())
	update := bson.M{"$setOnInsert": doc}
	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, bson.M{"email": doc.Email}, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	if result.UpsertedCount > 0 {
		account.ID = doc.ID.Hex()
		return true, nil
	}
	return false, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email.String()})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc AccountDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateNoDocuments(err)
	}
	account := mapAccountDocument(doc)
	return &account, nil
}

func accountDocument(a *domain.Account, id primitive.ObjectID) AccountDocument {
	return AccountDocument{
		ID:           id,
		Email:        a.Email.String(),
		PasswordHash: a.PasswordHash,
		Name:         a.Name,
		Phone:        a.Phone,
		Role:         a.Role,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
