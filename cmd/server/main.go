package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/collab-api/internal/auth"
	"github.com/yukikurage/collab-api/internal/config"
	"github.com/yukikurage/collab-api/internal/database"
	"github.com/yukikurage/collab-api/internal/events"
	"github.com/yukikurage/collab-api/internal/logger"
	"github.com/yukikurage/collab-api/internal/notify"
	"github.com/yukikurage/collab-api/internal/realtime"
	"github.com/yukikurage/collab-api/internal/repository"
	"github.com/yukikurage/collab-api/internal/router"
	"github.com/yukikurage/collab-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sugar, err := logger.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	if err := run(cfg, sugar); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.GinMode)

	// Connect to database
	db, err := database.Connect(cfg.Database, cfg.Server.GinMode == gin.DebugMode, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	teams := repository.NewTeamRepository(db)
	projects := repository.NewProjectRepository(db)
	tasks := repository.NewTaskRepository(db)
	activity := repository.NewActivityRepository(db)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(log)
	var fanout realtime.Publisher = hub
	if cfg.Redis.Addr != "" {
		client, err := realtime.ConnectRedis(cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer client.Close()

		bridge := realtime.NewRedisBridge(client, cfg.Redis.Channel, hub, log)
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("redis relay stopped", "error", err)
			}
		}()
		fanout = bridge
		log.Infow("fan-out relayed through redis", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	var exporter realtime.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaExporter, err := events.NewKafkaExporter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaExporter.Close()
		exporter = kafkaExporter
	}

	aiService := services.NewAIService(cfg.OpenAI)
	if aiService == nil {
		log.Info("OPENAI_API_KEY not set, task suggestions disabled")
	}

	dispatcher := services.NewDispatcher(log, services.DefaultSideEffectTimeout)

	r := router.New(router.Deps{
		DB:       db,
		Gate:     auth.NewGate(tokens, users),
		Hub:      hub,
		Auth:     services.NewAuthService(users, tokens),
		Teams:    services.NewTeamService(teams, projects, users, log),
		Projects: services.NewProjectService(projects, teams, tasks, activity, dispatcher),
		Tasks: services.NewTaskService(services.TaskServiceDeps{
			Tasks:      tasks,
			Projects:   projects,
			Users:      users,
			Activity:   activity,
			Mailer:     notify.NewSender(cfg.Email, log),
			Fanout:     fanout,
			Exporter:   exporter,
			Dispatcher: dispatcher,
			AI:         aiService,
			Logger:     log,
		}),
		Admin:          services.NewAdminService(users, teams, projects, tasks),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http shutdown", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warnw("pending side effects abandoned", "error", err)
	}
	return nil
}
