// Package bootstrap wires configuration into stores, adapters and services.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/config"
	"github.com/YogindraChaudhari/plantationDrive/internal/core"
	"github.com/YogindraChaudhari/plantationDrive/internal/db"
	"github.com/YogindraChaudhari/plantationDrive/internal/firebase"
	"github.com/YogindraChaudhari/plantationDrive/internal/middleware"
	"github.com/YogindraChaudhari/plantationDrive/pkg/cache"
	"github.com/YogindraChaudhari/plantationDrive/pkg/mailer"
	"github.com/YogindraChaudhari/plantationDrive/pkg/messagequeue"
)

const redisKeyPrefix = "plantationdrive:"

// App holds everything the server and the CLI need.
type App struct {
	Docs       db.DocumentStore
	Blobs      db.BlobStore
	Images     *core.JPEGProcessor
	AuthMW     gin.HandlerFunc
	Plants     core.PlantService
	Users      core.UserService
	Attendance core.AttendanceService

	closers []func() error
}

// Close releases backend connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New builds the application for cfg. On error every connection opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	var accounts core.AccountManager
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		clients, err := firebase.InitFirebase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, clients.Close)

		if app.Docs, err = db.NewFirestoreStore(clients.Firestore, logger); err != nil {
			return nil, err
		}
		if app.Blobs, err = db.NewBucketStore(clients.Bucket, cfg.FirebaseStorageBucket); err != nil {
			return nil, err
		}
		if accounts, err = firebase.NewAccounts(clients.Auth, cfg.PasswordResetURL); err != nil {
			return nil, err
		}
		app.AuthMW = middleware.AuthMiddleware(clients.Auth, logger)
	case config.BackendMemory:
		logger.Warn("Using in-memory store; data is lost on exit and requests are not authenticated")
		app.Docs = db.NewMemoryStore()
		app.Blobs = db.NewMemoryBlobStore()
		app.AuthMW = middleware.LocalAuthMiddleware("local-dev")
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	zoneCache, err := newCache(ctx, cfg, logger, app)
	if err != nil {
		return nil, err
	}
	publisher, err := newPublisher(cfg, logger, app)
	if err != nil {
		return nil, err
	}
	mail, err := newMailer(cfg, logger)
	if err != nil {
		return nil, err
	}

	app.Images = core.NewJPEGProcessor(cfg.ImageMaxDimension, cfg.ImageJPEGQuality, cfg.MaxUploadBytes)
	app.Plants = core.NewPlantService(app.Docs, app.Blobs, app.Images, zoneCache, cfg.CacheTTL, publisher, logger)
	app.Users = core.NewUserService(app.Docs, accounts, mail, logger)
	app.Attendance = core.NewAttendanceService(app.Docs, app.Users, cfg.Location(), logger)
	return app, nil
}

func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger, app *App) (cache.Cache, error) {
	if cfg.RedisAddress == "" {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.NewRedisCacheConfig{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   redisKeyPrefix,
	}, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, rc.Close)
	return rc, nil
}

func newPublisher(cfg *config.Config, logger *zap.Logger, app *App) (messagequeue.Publisher, error) {
	if cfg.AMQPURL == "" {
		return messagequeue.NopPublisher{}, nil
	}
	mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{
		URL:      cfg.AMQPURL,
		Exchange: cfg.AMQPExchange,
	}, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, mq.Close)
	return mq, nil
}

func newMailer(cfg *config.Config, logger *zap.Logger) (mailer.Mailer, error) {
	switch cfg.MailProvider {
	case config.MailProviderSMTP:
		return mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
	case config.MailProviderSendGrid:
		return mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom, "Plantation Drive")
	default:
		return mailer.LogMailer{Logger: logger}, nil
	}
}
