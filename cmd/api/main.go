package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/mess-finder/api/internal/config"
	"github.com/sngm3741/mess-finder/api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	logger := cfg.Logger

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	var client *mongo.Client
	if cfg.DataStore == config.DataStoreMongo {
		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		client, err = mongo.Connect(ctx, clientOptions)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to MongoDB")
		}
	} else {
		logger.Warn("using in-memory data store; data is lost on restart")
	}

	app, err := server.New(ctx, cfg, client)
	if err != nil {
		logger.WithError(err).Error("failed to initialise server")
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		logger.WithError(err).Fatal("server stopped with error")
	}
}
