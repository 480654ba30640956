package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/panjf2000/ants/v2"

	"github.com/sportsync/matchday/broadcast"
	"github.com/sportsync/matchday/config"
	"github.com/sportsync/matchday/db"
	"github.com/sportsync/matchday/events"
	"github.com/sportsync/matchday/handlers"
	"github.com/sportsync/matchday/repositories"
	api "github.com/sportsync/matchday/routes"
	"github.com/sportsync/matchday/schedule"
	"github.com/sportsync/matchday/services"
	"github.com/sportsync/matchday/standings"
	"github.com/sportsync/matchday/storage"
)

// store bundles the repository set of whichever backend is configured.
type store struct {
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	venues      repositories.VenueRepository
	fixtures    repositories.FixtureRepository
	slots       repositories.SlotRepository
	results     repositories.ResultRepository
	standings   repositories.StandingRepository
	close       func() error
}

func openStore(cfg *config.Config, logger *slog.Logger) (*store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established")
		return &store{
			tournaments: repositories.NewPostgresTournamentRepository(dbConn),
			teams:       repositories.NewPostgresTeamRepository(dbConn),
			venues:      repositories.NewPostgresVenueRepository(dbConn),
			fixtures:    repositories.NewPostgresFixtureRepository(dbConn),
			slots:       repositories.NewPostgresSlotRepository(dbConn),
			results:     repositories.NewPostgresResultRepository(dbConn),
			standings:   repositories.NewPostgresStandingRepository(dbConn),
			close:       dbConn.Close,
		}, nil
	case "bolt":
		bs, err := storage.NewBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("bolt store opened", slog.String("path", cfg.BoltPath))
		return &store{
			tournaments: bs.Tournaments(),
			teams:       bs.Teams(),
			venues:      bs.Venues(),
			fixtures:    bs.Fixtures(),
			slots:       bs.Slots(),
			results:     bs.Results(),
			standings:   bs.Standings(),
			close:       bs.Close,
		}, nil
	case "memory":
		ms := repositories.NewMemoryStore()
		logger.Info("in-memory store initialized")
		return &store{
			tournaments: ms.Tournaments(),
			teams:       ms.Teams(),
			venues:      ms.Venues(),
			fixtures:    ms.Fixtures(),
			slots:       ms.Slots(),
			results:     ms.Results(),
			standings:   ms.Standings(),
			close:       func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("store", cfg.StoreBackend))

	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()

	// Пул воркеров для пересчёта турнирных таблиц
	pool, err := ants.NewPool(cfg.WorkerPoolSize)
	if err != nil {
		logger.Error("failed to create worker pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Release()
	logger.Info("worker pool started", slog.Int("size", cfg.WorkerPoolSize))

	// Сервисы
	tournamentService := services.NewTournamentService(st.tournaments, logger)

	hub := broadcast.NewHub(broadcast.HubConfig{
		Gate:      broadcast.GateFunc(tournamentService.CanView),
		Logger:    logger,
		Retention: cfg.RingBufferSize,
		QueueSize: cfg.QueueSize,
	})
	logger.Info("broadcast hub initialized",
		slog.Int("retention", cfg.RingBufferSize),
		slog.Int("queue_size", cfg.QueueSize))

	bus := events.NewBus(logger)

	schedulingService := services.NewSchedulingService(
		st.tournaments,
		st.venues,
		st.fixtures,
		st.slots,
		schedule.NewRoundRobinGenerator(),
		schedule.NewVenueSlotAllocator(),
		bus,
		logger,
	)
	resultService := services.NewResultService(st.tournaments, st.fixtures, st.results, bus, logger)
	standingsService := services.NewStandingsService(
		st.tournaments,
		st.teams,
		st.results,
		st.standings,
		standings.NewEngine(),
		hub,
		pool,
		logger,
	)
	announcementService := services.NewAnnouncementService(st.tournaments, bus, logger)

	services.RegisterEventHandlers(bus, standingsService, hub, logger)
	logger.Info("services initialized")

	// HTTP-обработчики и маршруты
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Schedule:     handlers.NewScheduleHandler(schedulingService),
		Result:       handlers.NewResultHandler(resultService),
		Standings:    handlers.NewStandingsHandler(standingsService),
		Announcement: handlers.NewAnnouncementHandler(announcementService),
		WebSocket:    handlers.NewWebSocketHandler(hub, logger),
		Poll:         handlers.NewPollHandler(hub, cfg.PollTimeout),
	}, []byte(cfg.JWTSecretKey))
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.PollTimeout + 5*time.Second, // long polling holds responses open
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
