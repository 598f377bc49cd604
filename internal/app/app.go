package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sonder-backend/internal/clients/groq"
	"github.com/yungbote/sonder-backend/internal/clients/jina"
	"github.com/yungbote/sonder-backend/internal/clients/openai"
	"github.com/yungbote/sonder-backend/internal/clients/redis"
	"github.com/yungbote/sonder-backend/internal/data/db"
	"github.com/yungbote/sonder-backend/internal/data/repos"
	apphttp "github.com/yungbote/sonder-backend/internal/http"
	"github.com/yungbote/sonder-backend/internal/http/handlers"
	"github.com/yungbote/sonder-backend/internal/observability"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"github.com/yungbote/sonder-backend/internal/services"
)

// App owns process lifecycle: construct everything, serve, shut down in
// order.
type App struct {
	cfg          Config
	log          *logger.Logger
	server       *apphttp.Server
	cache        redis.Cache
	otelShutdown func(context.Context) error
}

type clientSet struct {
	llm        groq.Client
	embedder   jina.Client
	transcribe openai.Client
	cache      redis.Cache
}

type repoSet struct {
	stories    repos.StoryRepo
	embeddings repos.StoryEmbeddingRepo
	suggested  repos.SuggestedStoryRepo
	received   repos.ReceivedStoryRepo
	reactions  repos.ReactionRepo
	comments   repos.CommentRepo
	reports    repos.ReportRepo
	follows    repos.FollowRepo
	profiles   repos.ProfileRepo
}

type serviceSet struct {
	stories       services.StoryService
	feed          services.FeedService
	social        services.SocialService
	received      services.ReceivedService
	transcription services.TranscriptionService
}

func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "sonder-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	clients, err := wireClients(log)
	if err != nil {
		return nil, err
	}
	rs := wireRepos(pg, log)
	svcs := wireServices(cfg, log, clients, rs)

	router := apphttp.NewRouter(apphttp.RouterDeps{
		Log:        log,
		JWTSecret:  cfg.JWTSecret,
		Health:     handlers.NewHealthHandler(),
		Story:      handlers.NewStoryHandler(log, svcs.stories),
		Feed:       handlers.NewFeedHandler(log, svcs.feed),
		Social:     handlers.NewSocialHandler(log, svcs.social),
		Received:   handlers.NewReceivedHandler(log, svcs.received),
		Transcribe: handlers.NewTranscribeHandler(log, svcs.transcription),
	})

	return &App{
		cfg:          cfg,
		log:          log,
		server:       apphttp.NewServer(log, router, cfg.Port),
		cache:        clients.cache,
		otelShutdown: otelShutdown,
	}, nil
}

func wireClients(log *logger.Logger) (clientSet, error) {
	llm, err := groq.NewClient(log)
	if err != nil {
		return clientSet{}, err
	}
	embedder, err := jina.NewClient(log)
	if err != nil {
		return clientSet{}, err
	}
	transcribe, err := openai.NewClient(log)
	if err != nil {
		return clientSet{}, err
	}

	// The cache is optional: without REDIS_ADDR the feed reads straight from
	// postgres.
	var cache redis.Cache
	if os.Getenv("REDIS_ADDR") != "" {
		cache, err = redis.NewCache(log)
		if err != nil {
			return clientSet{}, err
		}
	}

	return clientSet{llm: llm, embedder: embedder, transcribe: transcribe, cache: cache}, nil
}

func wireRepos(pg *db.PostgresService, log *logger.Logger) repoSet {
	gdb := pg.DB()
	return repoSet{
		stories:    repos.NewStoryRepo(gdb, log),
		embeddings: repos.NewStoryEmbeddingRepo(gdb, log),
		suggested:  repos.NewSuggestedStoryRepo(gdb, log),
		received:   repos.NewReceivedStoryRepo(gdb, log),
		reactions:  repos.NewReactionRepo(gdb, log),
		comments:   repos.NewCommentRepo(gdb, log),
		reports:    repos.NewReportRepo(gdb, log),
		follows:    repos.NewFollowRepo(gdb, log),
		profiles:   repos.NewProfileRepo(gdb, log),
	}
}

func wireServices(cfg Config, log *logger.Logger, clients clientSet, rs repoSet) serviceSet {
	moderation := services.NewModerationService(log, clients.llm)
	classifier := services.NewClassifierService(log, clients.llm)
	embedder := services.NewEmbeddingService(log, clients.embedder)
	rewriter := services.NewRewriteService(log, clients.llm)
	fallback := services.NewFallbackService(log, clients.llm)

	delivery := services.NewDeliveryService(
		log, rs.embeddings, rs.stories, rs.suggested, rs.received,
		rewriter, fallback, cfg.Match, clients.llm.Model(), clients.embedder.Model(),
	)

	return serviceSet{
		stories: services.NewStoryService(
			log, rs.stories, rs.embeddings, rs.suggested,
			moderation, classifier, embedder, rewriter, delivery,
			cfg.SupportedLanguages,
		),
		feed:          services.NewFeedService(log, rs.suggested, rs.reactions, rs.comments, clients.cache, cfg.FeedCacheTTL),
		social:        services.NewSocialService(log, rs.suggested, rs.reactions, rs.comments, rs.reports, rs.follows, rs.profiles, moderation),
		received:      services.NewReceivedService(log, rs.received, rs.suggested),
		transcription: services.NewTranscriptionService(log, clients.transcribe),
	}
}

// Run serves until SIGINT/SIGTERM, then drains.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		a.log.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("http shutdown failed", "error", err)
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close failed", "error", err)
		}
	}
	if err := a.otelShutdown(ctx); err != nil {
		a.log.Warn("otel shutdown failed", "error", err)
	}
	a.log.Sync()
	return nil
}
