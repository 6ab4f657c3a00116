package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gmkornilov/chess-coach-backend/internal/api"
	"github.com/gmkornilov/chess-coach-backend/internal/config"
	"github.com/gmkornilov/chess-coach-backend/internal/dao"
	"github.com/gmkornilov/chess-coach-backend/internal/db"
	"github.com/gmkornilov/chess-coach-backend/internal/lichess"
	"github.com/gmkornilov/chess-coach-backend/internal/logging"
	"github.com/gmkornilov/chess-coach-backend/pkg/analysis"
	"github.com/gmkornilov/chess-coach-backend/pkg/engine"
)

func main() {
	logger := logging.NewLogger()

	cfg, err := config.InitConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("read config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var puzzleRepo dao.PuzzleRepository
	var reportRepo dao.ReportRepository
	if cfg.Database.Address != "" {
		dbClient, err := db.NewDbClient(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to mongo")
		}
		defer dbClient.Close()
		puzzleRepo = dao.NewPuzzleRepository(dbClient)
		reportRepo = dao.NewReportRepository(dbClient)
	} else {
		logger.Warn().Msg("no mongo address configured, puzzle and report storage disabled")
	}

	// Engine failure is a degradation, not a startup failure: the server
	// still runs, analysis endpoints answer "no evaluation".
	var scheduler *analysis.Scheduler
	session, err := engine.NewSession(logger.With().Str("component", "engine").Logger(), cfg.Engine.Path, cfg.Engine.Args...)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Engine.Path).Msg("engine spawn failed, analysis disabled")
	} else {
		readyTimeout := time.Duration(cfg.Engine.ReadyTimeoutMS) * time.Millisecond
		if err := session.Start(ctx, readyTimeout); err != nil {
			logger.Warn().Err(err).Msg("engine handshake failed, analysis disabled")
			_ = session.Close()
		} else {
			if err := session.Configure(engine.Options{Hash: cfg.Engine.Hash, Threads: cfg.Engine.Threads}); err != nil {
				logger.Warn().Err(err).Msg("engine configure failed")
			}
			thresholds := analysis.Thresholds{
				Good:       cfg.Analysis.GoodThreshold,
				Inaccuracy: cfg.Analysis.InaccuracyThreshold,
				Mistake:    cfg.Analysis.MistakeThreshold,
			}
			scheduler = analysis.NewScheduler(session, cfg.Engine.Depth, thresholds,
				logger.With().Str("component", "scheduler").Logger())
			defer session.Close()
			defer scheduler.Close()
		}
	}

	if cfg.Live.Enabled && scheduler != nil {
		watcher := lichess.NewWatcher(scheduler, cfg.Live.FeedURL,
			logger.With().Str("component", "tv-watcher").Logger())
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("tv watcher stopped")
			}
		}()
	}

	var puzzleApi *api.PuzzleApi
	if puzzleRepo != nil {
		puzzleApi = api.NewPuzzleApi(puzzleRepo)
	}
	analysisApi := api.NewAnalysisApi(scheduler, reportRepo,
		logger.With().Str("component", "api").Logger())

	router := api.NewRouter(analysisApi, puzzleApi)
	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
}
