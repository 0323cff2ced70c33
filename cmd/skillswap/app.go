package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"skillswap/internal/app/commands"
	chatsapp "skillswap/internal/app/handlers/chats"
	swapsapp "skillswap/internal/app/handlers/swaps"
	"skillswap/internal/app/middleware"
	appoutbox "skillswap/internal/app/outbox"
	"skillswap/internal/app/queries"
	"skillswap/internal/app/uow"
	domainswap "skillswap/internal/domain/swap"
	domainuser "skillswap/internal/domain/user"
	"skillswap/internal/infra/broker/kafka"
	"skillswap/internal/infra/cache"
	"skillswap/internal/infra/config"
	mongostore "skillswap/internal/infra/db/mongo"
	ginserver "skillswap/internal/infra/http/gin"
	"skillswap/internal/infra/inbox"
	"skillswap/internal/infra/obs"
	infraoutbox "skillswap/internal/infra/outbox"
	"skillswap/internal/infra/security"
	"skillswap/internal/infra/storage/memory"
	"skillswap/internal/infra/validation"
)

type application struct {
	cfg      config.Config
	logger   *slog.Logger
	factory  uow.UoWFactory
	handlers ginserver.Handlers
	checks   map[string]obs.Check

	background []func(ctx context.Context) error
	closers    []func()
	wg         sync.WaitGroup
}

// storage is what a backend contributes to the command pipeline.
type storage struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	checks      map[string]obs.Check
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger, checks: map[string]obs.Check{}}
	router := appoutbox.NewRouter()

	var (
		st  storage
		err error
	)
	switch cfg.Storage {
	case config.StorageMongo:
		st, err = app.mongoStorage(ctx, router)
	default:
		st = app.memoryStorage(router)
	}
	if err != nil {
		app.Close()
		return nil, err
	}
	app.factory = st.factory
	for name, check := range st.checks {
		app.checks[name] = check
	}

	bans, err := app.banCache(ctx, st.factory)
	if err != nil {
		app.Close()
		return nil, err
	}

	validator := validation.New()
	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	commandPipeline := middleware.ChainCommands(
		cmdBus,
		middleware.Logging(logger),
		middleware.Validation(validator),
		middleware.RejectBannedActors(bans),
		middleware.Idempotency(st.idempotency, nil),
		middleware.OutboxFlush(st.outbox),
		middleware.Transaction(st.factory, nil),
	)
	queryPipeline := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(validator),
	)

	base := chatsapp.Base{
		Outbox:  st.outbox,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
		NewID:   uuid.NewString,
	}
	chatsapp.Register(cmdBus, queryBus, chatsapp.Options{
		Base:             base,
		UoWFactory:       st.factory,
		MaxContentLength: cfg.MessageMaxLength,
		FlaggedPageLimit: cfg.FlaggedPageLimit,
	})
	swapsapp.Register(cmdBus, queryBus, &swapsapp.Handler{
		UoWFactory: st.factory,
		Outbox:     st.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Logger:     logger,
		NewID:      uuid.NewString,
	})

	router.Subscribe(domainswap.Accepted{}.EventName(), chatsapp.OpenOnSwapAccepted(commandPipeline))
	router.Subscribe(domainuser.Banned{}.EventName(), cache.OnUserBanned(bans))

	verifier, err := security.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.handlers = ginserver.Handlers{
		Chat:  ginserver.ChatHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
		Swap:  ginserver.SwapHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
		Admin: ginserver.AdminHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{
			Verifier: verifier,
			Bans:     bans,
			Logger:   logger,
		}.Handle,
	}
	return app, nil
}

func (a *application) memoryStorage(router *appoutbox.Router) storage {
	store := memory.NewStore()
	box := memory.NewOutbox(router, a.logger)
	return storage{
		factory:     memory.Factory{Store: store, Outbox: box},
		outbox:      box,
		idempotency: memory.NewIdempotencyStore(a.cfg.IdempotencyTTL),
	}
}

// mongoStorage persists through Mongo and relays the outbox either to Kafka, whose
// consumer feeds the router, or straight to the router.
func (a *application) mongoStorage(ctx context.Context, router *appoutbox.Router) (storage, error) {
	client, err := mongostore.New(a.cfg.MongoURI, a.cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("connect mongo: %w", err)
	}
	a.closers = append(a.closers, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Close(closeCtx)
	})
	if err := client.EnsureIndexes(ctx); err != nil {
		return storage{}, fmt.Errorf("ensure indexes: %w", err)
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, a.cfg.IdempotencyTTL)
	if err != nil {
		return storage{}, fmt.Errorf("idempotency store: %w", err)
	}
	outboxStore, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return storage{}, fmt.Errorf("outbox store: %w", err)
	}

	var producer infraoutbox.Producer = infraoutbox.LocalProducer{Router: router}
	if a.cfg.KafkaEnabled() {
		kp, err := kafka.NewProducer(a.cfg.KafkaBrokers, nil)
		if err != nil {
			return storage{}, fmt.Errorf("kafka producer: %w", err)
		}
		a.closers = append(a.closers, func() { _ = kp.Close() })
		producer = kp

		dedupe, err := inbox.NewStore(ctx, client.DB, a.cfg.KafkaConsumerGroup)
		if err != nil {
			return storage{}, fmt.Errorf("inbox store: %w", err)
		}
		consumer, err := kafka.NewConsumer(a.cfg.KafkaBrokers, a.cfg.KafkaConsumerGroup, nil, &kafka.RoutingHandler{
			Router: router,
			Inbox:  dedupe,
			Logger: a.logger,
		})
		if err != nil {
			return storage{}, fmt.Errorf("kafka consumer: %w", err)
		}
		a.closers = append(a.closers, func() { _ = consumer.Close() })
		topics := []string{
			infraoutbox.TopicFor(a.cfg.KafkaTopicPrefix, domainswap.Accepted{}.EventName()),
			infraoutbox.TopicFor(a.cfg.KafkaTopicPrefix, domainuser.Banned{}.EventName()),
		}
		a.background = append(a.background, func(ctx context.Context) error {
			return consumer.Run(ctx, topics)
		})
	}

	worker := &infraoutbox.Worker{
		Store:       outboxStore,
		Producer:    producer,
		Logger:      a.logger,
		Interval:    a.cfg.OutboxPollInterval,
		TopicPrefix: a.cfg.KafkaTopicPrefix,
		ID:          uuid.NewString(),
		Backoff:     a.cfg.RetryBackoff,
	}
	a.background = append(a.background, worker.Run)

	return storage{
		factory:     mongostore.Factory{DB: client.DB},
		outbox:      outboxStore,
		idempotency: idem,
		checks:      map[string]obs.Check{"mongo": client.Ping},
	}, nil
}

type banCache interface {
	middleware.BanChecker
	cache.Marker
}

func (a *application) banCache(ctx context.Context, factory uow.UoWFactory) (banCache, error) {
	lookup := cache.RepositoryLookup(factory)
	if a.cfg.RedisAddr == "" {
		return cache.NewMemoryBans(lookup, a.cfg.BanCacheTTL), nil
	}
	client, err := cache.NewRedisClient(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return &cache.RedisBans{Client: client, TTL: a.cfg.BanCacheTTL, Lookup: lookup, Logger: a.logger}, nil
}

func (a *application) startBackground(ctx context.Context) {
	for _, run := range a.background {
		a.wg.Add(1)
		go func(run func(context.Context) error) {
			defer a.wg.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("background task stopped", "error", err)
			}
		}(run)
	}
}

func (a *application) wait() {
	a.wg.Wait()
}

// Close releases clients in reverse order of creation.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
