package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"quickgpt/internal/ai"
	appsvc "quickgpt/internal/app"
	"quickgpt/internal/cache"
	"quickgpt/internal/config"
	"quickgpt/internal/generation"
	"quickgpt/internal/logging"
	"quickgpt/internal/model"
	mysqlClient "quickgpt/internal/platform/mysql"
	rabbitmqClient "quickgpt/internal/platform/rabbitmq"
	redisClient "quickgpt/internal/platform/redis"
	sqliteClient "quickgpt/internal/platform/sqlite"
	"quickgpt/internal/repository"
	"quickgpt/internal/worker"
)

const cacheDirtyTTL = 5 * time.Second

type Services struct {
	Auth     *appsvc.AuthService
	Chats    *appsvc.ChatService
	Pipeline *appsvc.MessagePipeline
	Gallery  *appsvc.GalleryService
	Credits  *appsvc.CreditService
}

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Services Services

	CommitWorker *worker.CommitPersistWorker
	Reconciler   *worker.Reconciler

	closers   []io.Closer
	StartedAt time.Time
}

// New loads the configuration and brings up every dependency. Redis and
// RabbitMQ are optional: without Redis nothing is cached, and without
// RabbitMQ commits are applied in the request goroutine.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logging.Setup(cfg.App.Env)

	a := &App{Config: cfg, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	a.DB = db
	if cfg.MySQL.AutoMigrate || cfg.Storage.Driver == "sqlite" {
		if err := Migrate(db); err != nil {
			return err
		}
	}

	var (
		listCache    appsvc.ChatListCache
		galleryCache appsvc.GalleryCache
	)
	if cfg.Redis.Addr != "" {
		redisCli, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = redisCli
		listCache = cache.NewChatListCache(redisCli, seconds(cfg.Redis.ChatListTTLSeconds), cacheDirtyTTL)
		galleryCache = cache.NewGalleryCache(redisCli, seconds(cfg.Redis.GalleryTTLSeconds), cacheDirtyTTL)
	} else {
		logrus.Warn("redis not configured, caching disabled")
	}

	var publisher appsvc.CommitPublisher
	if cfg.RabbitMQ.URL != "" {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		a.MQConn = mqConn
		publisher = rabbitmqClient.NewCommitPublisher(mqConn, cfg.RabbitMQ.CommitQueue)
	} else {
		logrus.Warn("rabbitmq not configured, commits applied inline")
	}

	generators, err := a.buildGenerators(ctx)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	ledger := repository.NewLedgerRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	settler := appsvc.NewCommitSettler(ledger, listCache, galleryCache)
	chats := appsvc.NewChatService(chatRepo, listCache, galleryCache)
	a.Services = Services{
		Auth:     appsvc.NewAuthService(userRepo, chats, cfg.Auth.JWTSecret, cfg.JWTExpiration(), cfg.Credit.SignupBonus),
		Chats:    chats,
		Pipeline: appsvc.NewMessagePipeline(chatRepo, ledger, generators, publisher, settler),
		Gallery:  appsvc.NewGalleryService(chatRepo, galleryCache),
		Credits:  appsvc.NewCreditService(purchaseRepo, cfg.Credit.Plans, cfg.Payment.CheckoutURL),
	}

	if a.MQConn != nil {
		a.CommitWorker = worker.NewCommitPersistWorker(a.MQConn, settler, cfg.RabbitMQ.CommitQueue)
		if err := a.CommitWorker.Start(ctx); err != nil {
			return fmt.Errorf("start commit worker failed: %w", err)
		}
	}

	a.Reconciler = worker.NewReconciler(ledger, settler, worker.ReconcilerConfig{
		Interval:       cfg.Reconcile.Interval(),
		GeneratedAfter: cfg.Reconcile.GeneratedAfter(),
		ReservedAfter:  cfg.Reconcile.ReservedAfter(),
		BatchSize:      cfg.Reconcile.BatchSize,
	})
	a.Reconciler.Start(ctx)
	return nil
}

func (a *App) buildGenerators(ctx context.Context) (*generation.Registry, error) {
	cfg := a.Config

	var completer generation.Completer
	switch cfg.LLM.Provider {
	case "gemini":
		client, err := ai.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client)
		completer = client
	case "", "openai":
		completer = ai.NewOpenAICompatibleClient(ai.ChatConfig{
			BaseURL:         cfg.LLM.BaseURL,
			APIKey:          cfg.LLM.APIKey,
			Model:           cfg.LLM.Model,
			ReasoningEffort: cfg.LLM.ReasoningEffort,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}

	images := ai.NewImageKitClient(ai.ImageKitConfig{
		URLEndpoint: cfg.Image.URLEndpoint,
		UploadURL:   cfg.Image.UploadURL,
		PrivateKey:  cfg.Image.PrivateKey,
		Folder:      cfg.Image.Folder,
		Width:       cfg.Image.Width,
		Height:      cfg.Image.Height,
	})

	return generation.NewRegistry(
		generation.NewTextGenerator(completer),
		generation.NewImageGenerator(images),
	), nil
}

// OpenDatabase opens the SQL backend selected by storage.driver.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Storage.Driver {
	case "", "mysql":
		return mysqlClient.New(ctx, cfg.MySQLDSN())
	case "sqlite":
		return sqliteClient.New(ctx, cfg.Storage.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (a *App) Close() error {
	var errs []error
	if a.Reconciler != nil {
		a.Reconciler.Close()
	}
	if a.CommitWorker != nil {
		a.CommitWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
