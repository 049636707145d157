package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	accountapp "github.com/sngm3741/mess-finder/api/internal/account/application"
	adminapp "github.com/sngm3741/mess-finder/api/internal/admin/application"
	"github.com/sngm3741/mess-finder/api/internal/config"
	"github.com/sngm3741/mess-finder/api/internal/infrastructure/memory"
	mongodoc "github.com/sngm3741/mess-finder/api/internal/infrastructure/mongo"
	ownerapp "github.com/sngm3741/mess-finder/api/internal/owner/application"
	publicapp "github.com/sngm3741/mess-finder/api/internal/public/application"
	"github.com/sngm3741/mess-finder/api/internal/rating"
)

// listingRepository は各コンテキストのポートを 1 つの実装で満たすための合成インターフェース。
type listingRepository interface {
	adminapp.ListingRepository
	publicapp.ListingRepository
	ownerapp.ListingRepository
	rating.ListingRatings
}

type reviewRepository interface {
	adminapp.ReviewRepository
	publicapp.ReviewRepository
	rating.ReviewTally
}

// Repositories bundles the storage adapters the services are built on.
type Repositories struct {
	Listings listingRepository
	Reviews  reviewRepository
	Accounts accountapp.AccountRepository
}

// MemoryRepositories returns process-local stores. Used by tests and DATA_STORE=memory.
func MemoryRepositories() Repositories {
	return Repositories{
		Listings: memory.NewListingStore(),
		Reviews:  memory.NewReviewStore(),
		Accounts: memory.NewAccountStore(),
	}
}

// MongoRepositories ensures indexes and returns MongoDB-backed repositories.
func MongoRepositories(ctx context.Context, cfg config.Config, client *mongo.Client) (Repositories, error) {
	db := client.Database(cfg.MongoDatabase)
	names := mongodoc.Collections{
		Messes:   cfg.MessCollection,
		Reviews:  cfg.ReviewCollection,
		Accounts: cfg.AccountCollection,
	}
	if err := mongodoc.EnsureIndexes(ctx, db, names); err != nil {
		return Repositories{}, fmt.Errorf("ensure indexes: %w", err)
	}
	return Repositories{
		Listings: mongodoc.NewListingRepository(db, cfg.MessCollection),
		Reviews:  mongodoc.NewReviewRepository(db, cfg.ReviewCollection),
		Accounts: mongodoc.NewAccountRepository(db, cfg.AccountCollection),
	}, nil
}

// services はリポジトリからアプリケーションサービス群を組み立てた結果。
type services struct {
	listingQueries    publicapp.ListingQueryService
	reviewCommands    publicapp.ReviewCommandService
	ownerListings     ownerapp.ListingCommandService
	listingModeration adminapp.ListingModerationService
	reviewModeration  adminapp.ReviewModerationService
	stats             adminapp.StatsService
	accounts          accountapp.Service
}

func newServices(repos Repositories, tokens accountapp.TokenIssuer, logger logrus.FieldLogger) services {
	aggregator := rating.NewAggregator(repos.Reviews, repos.Listings, logger)
	return services{
		listingQueries:    publicapp.NewListingQueryService(repos.Listings, repos.Reviews),
		reviewCommands:    publicapp.NewReviewCommandService(repos.Listings, repos.Reviews, aggregator, logger, nil),
		ownerListings:     ownerapp.NewListingCommandService(repos.Listings, logger, nil),
		listingModeration: adminapp.NewListingModerationService(repos.Listings, logger, nil),
		reviewModeration:  adminapp.NewReviewModerationService(repos.Reviews, aggregator, logger, nil),
		stats:             adminapp.NewStatsService(repos.Listings, repos.Reviews),
		accounts:          accountapp.NewService(repos.Accounts, tokens, logger, nil),
	}
}
