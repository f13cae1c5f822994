package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bustiming/internal/cache"
	intconfig "bustiming/internal/config"
	intdb "bustiming/internal/db"
	router "bustiming/internal/http"
	"bustiming/internal/http/handlers"
	"bustiming/internal/logging"
	"bustiming/internal/services"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("APP_CONFIG"), "path to a YAML config file")
	addr := flag.String("addr", "", "listen address, overrides APP_ADDR")
	migrateOnly := flag.Bool("migrate-only", false, "apply the schema, ensure the default admin, then exit")
	flag.Parse()

	env, err := intconfig.LoadEnv(*configPath)
	if err != nil {
		panic(err)
	}
	if *addr != "" {
		env.AppAddr = *addr
	}

	log, err := logging.New(env.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	loc, err := env.Location()
	if err != nil {
		log.Fatal("invalid timezone", zap.Error(err))
	}

	db, err := intconfig.ConnectDB(env.DB.DSNString())
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer intconfig.CloseDB()

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := intdb.EnsureSchema(startCtx, db); err != nil {
		cancel()
		log.Fatal("schema migration failed", zap.Error(err))
	}

	a := &handlers.API{
		DB:            db,
		CacheTTL:      env.Redis.TTL,
		Location:      loc,
		AllowRollover: env.AllowRollover,
		JWTSecret:     []byte(env.JWTSecret),
		JWTTTL:        env.JWTTTL,
		Bootstrap: services.DefaultAdmin{
			Username: env.Bootstrap.Username,
			Password: env.Bootstrap.Password,
			Email:    env.Bootstrap.Email,
		},
		Log: log,
	}

	created, err := a.Auth().EnsureDefaultAdmin(startCtx)
	cancel()
	if err != nil {
		log.Fatal("default admin bootstrap failed", zap.Error(err))
	}
	if created {
		log.Info("default admin ready", zap.String("username", env.Bootstrap.Username))
	}
	if *migrateOnly {
		log.Info("migration finished")
		return
	}

	if env.Redis.Enabled {
		rc, err := cache.NewRedisCache(env.Redis.Addr, env.Redis.Password, env.Redis.DB, log)
		if err != nil {
			log.Warn("route cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			a.Cache = rc
		}
	}

	r := router.NewRouter(env, a, log)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return
	}

	log.Info("server stopped")
}
