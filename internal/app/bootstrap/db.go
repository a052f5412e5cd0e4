// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/studypal/internal/app/system/activity"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/indexes"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	storageMinIO  = "minio"
	storageMemory = "memory"
)

// ConnectDB opens MongoDB and the optional backends (object storage, Redis
// pub/sub, Kafka activity stream). Backends left unconfigured fall back to
// in-process implementations.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	client, err := connectMongo(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)

	switch appCfg.StorageType {
	case storageMinIO:
		blobs, err := blobstore.NewMinIO(ctx, blobstore.MinIOConfig{
			Endpoint:  appCfg.MinIOEndpoint,
			AccessKey: appCfg.MinIOAccessKey,
			SecretKey: appCfg.MinIOSecretKey,
			Bucket:    appCfg.MinIOBucket,
			UseSSL:    appCfg.MinIOUseSSL,
		}, logger)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("connect blob storage: %w", err)
		}
		deps.Blobs = blobs
	default:
		logger.Info("using in-memory blob storage")
		deps.Blobs = blobstore.NewMemory()
	}

	if appCfg.RedisAddr != "" {
		bus, err := pubsub.NewRedis(ctx, pubsub.RedisConfig{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		}, logger)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("connect pub/sub: %w", err)
		}
		deps.Bus = bus
	} else {
		logger.Info("redis_addr not set; real-time events stay within this instance")
		deps.Bus = pubsub.NewMemory()
	}

	if len(appCfg.KafkaBrokers) > 0 {
		deps.Activity = activity.NewKafkaPublisher(appCfg.KafkaBrokers, appCfg.KafkaTopic, logger)
		logger.Info("material activity stream enabled",
			zap.Strings("brokers", appCfg.KafkaBrokers),
			zap.String("topic", appCfg.KafkaTopic))
	} else {
		deps.Activity = activity.Nop{}
	}

	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))
	return client, nil
}

// EnsureSchema creates the collections with their JSON-Schema validators,
// then the indexes every store relies on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ictx, cancel := context.WithTimeout(ctx, timeouts.Batch())
	defer cancel()

	if err := validators.EnsureAll(ictx, deps.MongoDatabase); err != nil {
		logger.Error("ensure collection validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ictx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
