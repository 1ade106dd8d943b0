package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"timelock.keep/config"
	"timelock.keep/internal/api"
	"timelock.keep/internal/logger"
	"timelock.keep/internal/store"
	"timelock.keep/internal/timelock"
	"timelock.keep/migrations"

	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New("server", "info").Fatal().Err(err).Msg("config error")
	}

	log := logger.New("server", cfg.Log.Level)

	st := initStore(cfg, log)
	defer st.Close()

	vault := timelock.NewService(st, time.Now, cfg.Vault.MinHoldDays, cfg.Vault.MaxHoldDays, log)
	router := api.SetupRouter(vault, log)

	log.Info().
		Str("addr", cfg.Addr()).
		Str("store", cfg.Store.Type).
		Msg("server starting")

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func initStore(cfg *config.Config, log *logger.Logger) store.Store {
	switch cfg.Store.Type {
	case "redis":
		st, err := store.NewRedisStore(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		return st
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		st, err := store.NewPostgresStore(ctx, cfg.Store.Postgres.DSN, log)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		if err := migrations.Migrate(st.DB()); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		return st
	default:
		return store.NewMemoryStore()
	}
}
