package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/smartdocs/internal/config"
	"github.com/kirillkom/smartdocs/internal/core/ports"
	"github.com/kirillkom/smartdocs/internal/core/usecase"
	"github.com/kirillkom/smartdocs/internal/infrastructure/classifier"
	"github.com/kirillkom/smartdocs/internal/infrastructure/queue/nats"
	"github.com/kirillkom/smartdocs/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/smartdocs/internal/infrastructure/resilience"
	"github.com/kirillkom/smartdocs/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/smartdocs/internal/infrastructure/token"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Docs  ports.DocumentRepository
	Users ports.UserRepository

	AuthUC      ports.AuthService
	IngestUC    ports.DocumentIngestor
	ReadUC      ports.DocumentReader
	DashboardUC ports.DashboardService
	ProcessUC   ports.DocumentProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	users := postgres.NewUserRepository(db)
	if err := users.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure users schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	codec, err := token.NewCodec(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}

	taxonomy := classifier.DefaultTaxonomy()
	if cfg.ClassifierTaxonomy != "" {
		taxonomy, err = classifier.LoadTaxonomy(cfg.ClassifierTaxonomy)
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
	}
	docClassifier := classifier.New(cfg.ClassifierURL, executor, taxonomy)

	authUC := usecase.NewAuthUseCase(users, codec)
	ingestUC := usecase.NewIngestDocumentUseCase(docs, storage, queue)
	readUC := usecase.NewDocumentReadUseCase(docs, storage)
	dashboardUC := usecase.NewDashboardUseCase(docs)
	processUC := usecase.NewProcessDocumentUseCase(docs, storage, docClassifier)

	return &App{
		Config: cfg,
		Queue:  queue,
		Docs:   docs,
		Users:  users,

		AuthUC:      authUC,
		IngestUC:    ingestUC,
		ReadUC:      readUC,
		DashboardUC: dashboardUC,
		ProcessUC:   processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
