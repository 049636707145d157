package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	accountapp "github.com/sngm3741/mess-finder/api/internal/account/application"
	adminapp "github.com/sngm3741/mess-finder/api/internal/admin/application"
	"github.com/sngm3741/mess-finder/api/internal/config"
	"github.com/sngm3741/mess-finder/api/internal/domain"
	mongodoc "github.com/sngm3741/mess-finder/api/internal/infrastructure/mongo"
	ownerapp "github.com/sngm3741/mess-finder/api/internal/owner/application"
	publicapp "github.com/sngm3741/mess-finder/api/internal/public/application"
	"github.com/sngm3741/mess-finder/api/internal/rating"
)

type seedOptions struct {
	envFile     string
	listings    int
	reviewers   int
	drop        bool
	randomSeed  int64
	ownerEmail  string
	ownerPasswd string
}

type city struct {
	name  string
	state string
	lng   float64
	lat   float64
}

var cities = []city{
	{name: "Pune", state: "Maharashtra", lng: 73.8567, lat: 18.5204},
	{name: "Bengaluru", state: "Karnataka", lng: 77.5946, lat: 12.9716},
	{name: "Hyderabad", state: "Telangana", lng: 78.4867, lat: 17.3850},
	{name: "Chennai", state: "Tamil Nadu", lng: 80.2707, lat: 13.0827},
	{name: "Delhi", state: "Delhi", lng: 77.2090, lat: 28.6139},
}

var messNames = []string{"Annapurna", "Ghar Ka Khana", "Maa Ki Rasoi", "Tiffin Express", "Sai Bhojanalay", "Green Leaf", "Swad", "Home Plate"}

var dishes = []ownerapp.MenuItemInput{
	{Name: "Poha", Price: 30, Category: "breakfast", IsVeg: true},
	{Name: "Idli Sambar", Price: 40, Category: "breakfast", IsVeg: true},
	{Name: "Veg Thali", Price: 90, Category: "lunch", IsVeg: true},
	{Name: "Dal Rice", Price: 70, Category: "lunch", IsVeg: true},
	{Name: "Chicken Curry Meal", Price: 140, Category: "dinner", IsVeg: false},
	{Name: "Paneer Roti Meal", Price: 110, Category: "dinner", IsVeg: true},
	{Name: "Samosa", Price: 20, Category: "snacks", IsVeg: true},
}

var comments = []string{
	"Tastes like home food.",
	"Good quantity for the price.",
	"Rotis were a bit cold but dal was great.",
	"Very clean kitchen and friendly owner.",
	"Too oily for daily meals.",
}

func main() {
	opts := parseFlags()
	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Fatal("failed to load env file")
	}
	logger := config.NewLogger(envOrDefault("LOG_LEVEL", "info"), envOrDefault("LOG_FORMAT", "text"))

	names := mongodoc.Collections{
		Messes:   envOrDefault("MESS_COLLECTION", "messes"),
		Reviews:  envOrDefault("REVIEW_COLLECTION", "reviews"),
		Accounts: envOrDefault("ACCOUNT_COLLECTION", "accounts"),
	}
	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "mess-finder")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	db := client.Database(dbName)

	listings := mongodoc.NewListingRepository(db, names.Messes)
	reviews := mongodoc.NewReviewRepository(db, names.Reviews)
	accounts := mongodoc.NewAccountRepository(db, names.Accounts)

	if opts.drop {
		if err := dropAll(ctx, db, names, listings, reviews); err != nil {
			logger.WithError(err).Fatal("failed to drop collections")
		}
		logger.Info("existing collections dropped")
	}
	if err := mongodoc.EnsureIndexes(ctx, db, names); err != nil {
		logger.WithError(err).Fatal("failed to ensure indexes")
	}

	if err := seed(ctx, logger, opts, listings, reviews, accounts); err != nil {
		logger.WithError(err).Fatal("seeding failed")
	}
	logger.Info("seed completed")
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envFile, "env", ".env", "env file to load before reading configuration")
	flag.IntVar(&opts.listings, "listings", 20, "number of mess listings to create")
	flag.IntVar(&opts.reviewers, "reviewers", 8, "number of distinct reviewers")
	flag.BoolVar(&opts.drop, "drop", false, "drop existing collections before seeding")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed")
	flag.StringVar(&opts.ownerEmail, "owner-email", "owner@example.com", "demo owner account email")
	flag.StringVar(&opts.ownerPasswd, "owner-password", "owner123", "demo owner account password")
	flag.Parse()
	if opts.listings < 0 {
		opts.listings = 0
	}
	if opts.reviewers < 1 {
		opts.reviewers = 1
	}
	return opts
}

// seed はアプリケーションサービス経由でデータを投入し、モデレーションと評価集計を本番と同じ経路で通す。
func seed(
	ctx context.Context,
	logger *logrus.Logger,
	opts seedOptions,
	listings *mongodoc.ListingRepository,
	reviews *mongodoc.ReviewRepository,
	accounts *mongodoc.AccountRepository,
) error {
	rng := rand.New(rand.NewSource(opts.randomSeed))
	seedLog := logger.WithField("component", "seed")

	accountSvc := accountapp.NewService(accounts, nil, seedLog, nil)
	adminEmail := envOrDefault("ADMIN_EMAIL", "admin@example.com")
	if _, err := accountSvc.EnsureDefaultAdmin(ctx, adminEmail, envOrDefault("ADMIN_PASSWORD", "admin123")); err != nil {
		return err
	}
	admin, err := findAccount(ctx, accounts, adminEmail)
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}

	owner, err := accountSvc.RegisterOwner(ctx, accountapp.RegisterOwnerCommand{
		Email:    opts.ownerEmail,
		Password: opts.ownerPasswd,
		Name:     "Demo Owner",
		Phone:    "+91-9800000000",
	})
	if errors.Is(err, domain.ErrDuplicateAccount) {
		owner, err = findAccount(ctx, accounts, opts.ownerEmail)
	}
	if err != nil {
		return fmt.Errorf("prepare owner: %w", err)
	}

	aggregator := rating.NewAggregator(reviews, listings, seedLog)
	ownerSvc := ownerapp.NewListingCommandService(listings, seedLog, nil)
	moderation := adminapp.NewListingModerationService(listings, seedLog, nil)
	reviewSvc := publicapp.NewReviewCommandService(listings, reviews, aggregator, seedLog, nil)
	reviewModeration := adminapp.NewReviewModerationService(reviews, aggregator, seedLog, nil)

	ownerPrincipal := domain.OwnerPrincipal{ID: owner.ID}
	adminPrincipal := domain.AdminPrincipal{ID: admin.ID}

	counts := map[domain.ListingStatus]int{}
	reviewCount := 0
	for i := 0; i < opts.listings; i++ {
		listing, err := ownerSvc.Create(ctx, ownerPrincipal, randomListing(rng, i))
		if err != nil {
			return fmt.Errorf("create listing %d: %w", i, err)
		}

		// 7 割を承認し、残りは保留・却下・停止に振り分ける。
		switch roll := rng.Intn(10); {
		case roll < 7:
			listing, err = moderation.Approve(ctx, listing.ID, adminPrincipal)
		case roll < 8:
			listing, err = moderation.Reject(ctx, listing.ID, adminPrincipal, "photos missing")
		case roll < 9:
			if listing, err = moderation.Approve(ctx, listing.ID, adminPrincipal); err == nil {
				listing, err = moderation.Suspend(ctx, listing.ID, adminPrincipal, "hygiene complaint under review")
			}
		}
		if err != nil {
			return fmt.Errorf("moderate listing %d: %w", i, err)
		}
		counts[listing.Status]++

		if listing.Status != domain.ListingApproved {
			continue
		}
		n, err := seedReviews(ctx, rng, opts.reviewers, listing.ID, reviewSvc, reviewModeration, adminPrincipal)
		if err != nil {
			return fmt.Errorf("seed reviews for %s: %w", listing.ID, err)
		}
		reviewCount += n
	}

	logger.WithFields(logrus.Fields{
		"approved":  counts[domain.ListingApproved],
		"pending":   counts[domain.ListingPending],
		"rejected":  counts[domain.ListingRejected],
		"suspended": counts[domain.ListingSuspended],
		"reviews":   reviewCount,
	}).Info("listings seeded")
	return nil
}

func seedReviews(
	ctx context.Context,
	rng *rand.Rand,
	reviewers int,
	listingID string,
	reviewSvc publicapp.ReviewCommandService,
	moderation adminapp.ReviewModerationService,
	admin domain.AdminPrincipal,
) (int, error) {
	n := rng.Intn(reviewers + 1)
	for _, u := range rng.Perm(reviewers)[:n] {
		review, err := reviewSvc.Create(ctx, domain.UserPrincipal{ID: fmt.Sprintf("seed-user-%02d", u)}, publicapp.CreateReviewCommand{
			ListingID: listingID,
			Rating:    1 + rng.Intn(5),
			Comment:   comments[rng.Intn(len(comments))],
		})
		if err != nil {
			return 0, err
		}
		// 一部は未承認のまま残してモデレーション待ちキューを作る。
		if rng.Intn(4) == 0 {
			continue
		}
		if _, err := moderation.Approve(ctx, review.ID, admin); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func randomListing(rng *rand.Rand, i int) ownerapp.ListingInput {
	c := cities[rng.Intn(len(cities))]
	menu := make([]ownerapp.MenuItemInput, 0, 4)
	vegOnly := rng.Intn(3) == 0
	minPrice, maxPrice := 0, 0
	for _, idx := range rng.Perm(len(dishes))[:3+rng.Intn(2)] {
		dish := dishes[idx]
		if vegOnly && !dish.IsVeg {
			continue
		}
		menu = append(menu, dish)
		if minPrice == 0 || dish.Price < minPrice {
			minPrice = dish.Price
		}
		if dish.Price > maxPrice {
			maxPrice = dish.Price
		}
	}
	if len(menu) == 0 {
		menu = append(menu, dishes[2])
		minPrice, maxPrice = dishes[2].Price, dishes[2].Price
	}

	name := fmt.Sprintf("%s Mess %d", messNames[rng.Intn(len(messNames))], i+1)
	return ownerapp.ListingInput{
		Name:        name,
		Description: fmt.Sprintf("Daily home-style meals in %s.", c.name),
		Longitude:   c.lng + (rng.Float64()-0.5)*0.08,
		Latitude:    c.lat + (rng.Float64()-0.5)*0.08,
		Address: domain.Address{
			Street:  fmt.Sprintf("%d Main Road", 1+rng.Intn(200)),
			City:    c.name,
			State:   c.state,
			Pincode: fmt.Sprintf("%06d", 400000+rng.Intn(99999)),
		},
		Menu:          menu,
		Photos:        []string{fmt.Sprintf("https://picsum.photos/seed/%s/640/480", slug(name))},
		OpenTime:      "08:00",
		CloseTime:     "22:00",
		MinPrice:      minPrice,
		MaxPrice:      maxPrice,
		AvailableDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		ContactPhone:  fmt.Sprintf("+91-98%08d", rng.Intn(100000000)),
		ContactEmail:  fmt.Sprintf("%s@example.com", slug(name)),
		IsVegOnly:     vegOnly,
	}
}

func findAccount(ctx context.Context, accounts *mongodoc.AccountRepository, email string) (*domain.Account, error) {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return nil, err
	}
	return accounts.FindByEmail(ctx, addr)
}

func dropAll(ctx context.Context, db *mongo.Database, names mongodoc.Collections, listings *mongodoc.ListingRepository, reviews *mongodoc.ReviewRepository) error {
	if err := listings.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", names.Messes, err)
	}
	if err := reviews.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", names.Reviews, err)
	}
	if err := db.Collection(names.Accounts).Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", names.Accounts, err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func slug(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}
