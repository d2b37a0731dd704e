package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/exercise-tracker/internal/api"
	"github.com/isdelr/exercise-tracker/internal/config"
	"github.com/isdelr/exercise-tracker/internal/database"
	"github.com/isdelr/exercise-tracker/internal/logger"
	"github.com/isdelr/exercise-tracker/internal/retention"
	"github.com/isdelr/exercise-tracker/internal/services"
	"github.com/isdelr/exercise-tracker/internal/websocket"
	"github.com/rs/zerolog/log"
)

type stores struct {
	users     services.UserServiceProvider
	exercises services.ExerciseServiceProvider
	events    services.EventServiceProvider
	close     func()
}

func openStores(ctx context.Context, url string) (*stores, error) {
	switch database.DetectBackend(url) {
	case database.BackendMongo:
		client, db, err := database.NewMongo(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		if err := database.MigrateMongo(ctx, db); err != nil {
			client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to create mongodb indexes: %w", err)
		}
		return &stores{
			users:     services.NewMongoUserService(db),
			exercises: services.NewMongoExerciseService(db),
			events:    services.NewMongoEventService(db),
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to disconnect from mongodb")
				}
			},
		}, nil
	default:
		db, err := database.New(url)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		return sqliteStores(db), nil
	}
}

func sqliteStores(db *sql.DB) *stores {
	return &stores{
		users:     services.NewUserService(db),
		exercises: services.NewExerciseService(db),
		events:    services.NewEventService(db),
		close: func() {
			if err := db.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		},
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Set up the store
	st, err := openStores(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer st.close()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	activity := services.NewActivityRecorder(st.events, hub)

	// Set up the event retention job
	var pruner *retention.Scheduler
	if cfg.RetentionCron != "" {
		pruner, err = retention.NewScheduler(cfg.RetentionCron, cfg.RetentionDays, st.events, activity)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure event retention")
		}
		pruner.Start()
	}

	// Set up router
	router := api.NewRouter(api.Options{
		PublicDir:      cfg.PublicDir,
		ViewsDir:       cfg.ViewsDir,
		AllowedOrigins: cfg.CORSOrigins,
	}, hub, api.Services{
		Users:     st.users,
		Exercises: st.exercises,
		Events:    st.events,
		Activity:  activity,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Your app is listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if pruner != nil {
		pruner.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
