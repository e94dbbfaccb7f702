package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloudnative/fitapp/internal/api"
	"cloudnative/fitapp/internal/cache"
	"cloudnative/fitapp/internal/config"
	"cloudnative/fitapp/internal/jobs"
	"cloudnative/fitapp/internal/logging"
	"cloudnative/fitapp/internal/metrics"
	"cloudnative/fitapp/internal/repository"
	"cloudnative/fitapp/internal/repository/memory"
	"cloudnative/fitapp/internal/repository/mongo"
	"cloudnative/fitapp/internal/service"
	"cloudnative/fitapp/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title Fitapp API
// @version 1.0
// @description Workouts, exercises, sets and progression tracking.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logging.NewLogger("fitapp", "", "info").WithError(err).Fatal("could not load config")
	}
	log := logging.NewLogger("fitapp", cfg.Log.Env, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Repositories ---
	var (
		workoutRepo repository.WorkoutRepository
		userRepo    repository.UserRepository
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory repositories, data is lost on restart")
		workoutRepo = memory.NewWorkoutRepository()
		userRepo = memory.NewUserRepository()
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		dbClient, err := mongo.ConnectDB(connectCtx, cfg.Database.URI)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("could not connect to MongoDB")
		}
		defer func() {
			log.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.WithError(err).Error("failed to disconnect MongoDB")
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		log.WithField("database", cfg.Database.Name).Info("database connection established")

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
				log.WithError(err).Error("index creation failed")
				return
			}
			log.Info("index creation completed")
		}()

		workoutRepo = mongo.NewMongoWorkoutRepository(appDB)
		userRepo = mongo.NewMongoUserRepository(appDB)
	}

	// --- Cache ---
	var readCache cache.Cache
	if cfg.Redis.Enabled {
		rdb := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Error("failed to close redis client")
			}
		}()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// reads fall through to the store while redis is down
			log.WithError(err).Warn("redis not reachable at startup")
		}
		cancel()
		readCache = cache.NewRedisCache(rdb)
	} else {
		memCache, err := cache.NewMemoryCache()
		if err != nil {
			log.WithError(err).Fatal("failed to create in-process cache")
		}
		defer memCache.Close()
		readCache = memCache
	}

	// --- Storage ---
	var fileStorage storage.FileStorage = storage.NewMemoryStorage()
	if cfg.S3.Enabled {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize S3 storage")
		}
	}

	// --- Metrics ---
	registry := metrics.SetupPrometheus()
	hooks := metrics.NewHooks(metrics.NewManager("fitapp", "aggregate", registry))

	// --- Services ---
	deps := service.Deps{
		Workouts:     workoutRepo,
		Users:        userRepo,
		Cache:        readCache,
		Hooks:        hooks,
		Log:          log,
		WorkoutsTTL:  cfg.Cache.WorkoutsTTL,
		ExercisesTTL: cfg.Cache.ExercisesTTL,
		MaxAttempts:  cfg.Consistency.MaxAttempts,
		Compensate:   cfg.Consistency.Compensate,
	}
	locator := service.NewExerciseLocator(workoutRepo)
	userService := service.NewUserService(deps)
	services := api.Services{
		Auth:     service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Workouts: service.NewWorkoutService(deps),
		Exercise: service.NewExerciseService(deps, locator),
		Sets:     service.NewSetService(deps, locator),
		Users:    userService,
		Export:   service.NewExportService(deps, fileStorage),
	}

	// --- Jobs ---
	if cfg.Streaks.Enabled {
		streakJob, err := jobs.NewStreakJob(userService, cfg.Streaks.Schedule, cfg.Streaks.Timeout, log)
		if err != nil {
			log.WithError(err).Fatal("invalid streak job configuration")
		}
		if err := streakJob.Start(ctx); err != nil {
			log.WithError(err).Fatal("failed to schedule streak job")
		}
	}

	// --- HTTP ---
	if cfg.Log.Env != logging.EnvDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestIDMiddleware(), api.RequestLogger(log))
	api.SetupRoutes(router, cfg.JWT.Secret, services, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("ListenAndServe failed")
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		os.Exit(1)
	}
	log.Info("server exiting")
}
