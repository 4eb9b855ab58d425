package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/taskhive-io/taskhive-ce/internal/api"
	"github.com/taskhive-io/taskhive-ce/internal/auth"
	"github.com/taskhive-io/taskhive-ce/internal/authz"
	"github.com/taskhive-io/taskhive-ce/internal/cache"
	"github.com/taskhive-io/taskhive-ce/internal/config"
	"github.com/taskhive-io/taskhive-ce/internal/database"
	"github.com/taskhive-io/taskhive-ce/internal/events"
	"github.com/taskhive-io/taskhive-ce/internal/notifications"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
	"github.com/taskhive-io/taskhive-ce/internal/scheduler"
	"github.com/taskhive-io/taskhive-ce/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	// Cache: redis in production, in-process when disabled.
	var store cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err != nil {
			return err
		}
		defer redisCache.Close()
		store = redisCache
	} else {
		store = cache.NewLocalCache()
	}

	// Publisher is constructed here and injected everywhere; it owns its
	// connection for the life of the process.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		sink, err := events.NewRedisStreamSink(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		publisher = events.NewAsyncPublisher(sink, cfg.Events.Workers, cfg.Events.QueueSize)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("server: close publisher: %v", err)
		}
	}()

	var mailer notifications.Mailer
	if cfg.IsDevelopment() {
		mailer = notifications.LogMailer{}
	} else {
		mailer = notifications.NewSMTPMailer(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort, cfg.Notify.SMTPUser, cfg.Notify.SMTPPass, cfg.Notify.From)
	}

	userRepo := repository.NewSQLUserRepository(db)
	groupRepo := repository.NewSQLGroupRepository(db)
	projectRepo := repository.NewSQLProjectRepository(db)
	taskRepo := repository.NewSQLTaskRepository(db)

	engine := authz.NewEngine()
	userSvc := service.NewUserService(userRepo)
	groupSvc := service.NewGroupService(groupRepo, userRepo, engine)
	projectSvc := service.NewProjectService(projectRepo, groupRepo, engine, store)
	taskSvc := service.NewTaskService(taskRepo, projectRepo, groupRepo, userRepo, engine, publisher)
	jwtManager := auth.NewJWTManager(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry)
	apiServer := api.NewServer(userSvc, groupSvc, projectSvc, taskSvc, jwtManager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Events.Enabled {
		consumer := events.NewConsumer(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, mailer)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("server: event consumer stopped: %v", err)
			}
		}()
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewService(taskRepo, userRepo, mailer)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	apiServer.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
