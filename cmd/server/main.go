package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quizwire/trivia-backend/internal/analytics"
	"github.com/quizwire/trivia-backend/internal/config"
	"github.com/quizwire/trivia-backend/internal/episode"
	"github.com/quizwire/trivia-backend/internal/httpapi"
	"github.com/quizwire/trivia-backend/internal/hub"
	"github.com/quizwire/trivia-backend/internal/judge"
	"github.com/quizwire/trivia-backend/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Session store: Redis when configured, in-memory otherwise.
	var st store.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis unreachable", zap.Error(err))
		}
		st = store.NewRedisStore(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set, sessions will not survive a restart")
		st = store.NewMemoryStore()
	}

	// Judging analytics: Postgres-backed when configured.
	var db *gorm.DB
	if cfg.PostgresDSN != "" {
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
		if err != nil {
			logger.Fatal("postgres unreachable", zap.Error(err))
		}
	}
	recorder, err := analytics.New(db, logger)
	if err != nil {
		logger.Fatal("analytics setup failed", zap.Error(err))
	}

	// Automated judging collaborator, optional.
	var autoJudge judge.Judge
	if cfg.JudgeURL != "" {
		client := &http.Client{Timeout: time.Duration(cfg.JudgeTimeoutSec) * time.Second}
		autoJudge = judge.NewHTTPJudge(cfg.JudgeURL, client, logger)
	}

	// Default question set, same tabular format as the custom import.
	var loadEpisode func() (*episode.Episode, error)
	if cfg.EpisodeFile != "" {
		path := cfg.EpisodeFile
		loadEpisode = func() (*episode.Episode, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return episode.ParseCustom(f)
		}
	}

	h := hub.NewHub(ctx, hub.Deps{
		Log:          logger,
		Store:        st,
		AutoJudge:    autoJudge,
		Analytics:    recorder,
		JudgeTimeout: time.Duration(cfg.JudgeTimeoutSec) * time.Second,
		LoadEpisode:  loadEpisode,
	})

	handler := httpapi.SetupRoutes(h, recorder, logger)

	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server exited", zap.Error(err))
	}
}
