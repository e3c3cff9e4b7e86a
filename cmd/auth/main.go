package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fveldev/blog-auth/internal/config"
	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/federation"
	"github.com/fveldev/blog-auth/internal/google"
	"github.com/fveldev/blog-auth/internal/httpserver"
	"github.com/fveldev/blog-auth/internal/logging"
	"github.com/fveldev/blog-auth/internal/notify"
	"github.com/fveldev/blog-auth/internal/refresh"
	"github.com/fveldev/blog-auth/internal/repo"
	"github.com/fveldev/blog-auth/internal/service"
	"github.com/fveldev/blog-auth/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}

	bootCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = gormRepo.EnsureRoles(bootCtx, domain.RoleUser, domain.RoleAdmin)
	cancel()
	if err != nil {
		log.Fatalf("role bootstrap: %v", err)
	}

	codec, err := token.NewCodec(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	manager := &refresh.Manager{
		Repo:       gormRepo,
		Codec:      codec,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}

	var notifier service.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		producer := notify.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		notifier = producer
	}

	svc := &service.AuthService{
		Repo:      gormRepo,
		Codec:     codec,
		Refresh:   manager,
		Creds:     &service.CredentialAuthenticator{Repo: gormRepo},
		Provider:  google.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleTimeout),
		Resolver:  &federation.Resolver{Repo: gormRepo},
		Notifier:  notifier,
		AccessTTL: cfg.AccessTTL,
	}

	e := echo.New()
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Codec:       codec,
	})

	go func() {
		addr := ":" + strconv.Itoa(cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
