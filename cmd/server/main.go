package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrotrack/livestock_tracker/internal/config"
	"github.com/agrotrack/livestock_tracker/internal/es"
	"github.com/agrotrack/livestock_tracker/internal/events"
	"github.com/agrotrack/livestock_tracker/internal/hash"
	"github.com/agrotrack/livestock_tracker/internal/httpserver"
	"github.com/agrotrack/livestock_tracker/internal/logging"
	"github.com/agrotrack/livestock_tracker/internal/middleware"
	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/internal/service"
	"github.com/agrotrack/livestock_tracker/internal/tokens"
	"github.com/agrotrack/livestock_tracker/pkg/db"
)

const sweepInterval = 24 * time.Hour

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	gormRepo := &repo.GormRepo{DB: gormDB}
	hasher := hash.New(cfg.BcryptCost)
	issuer := &tokens.Issuer{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}

	authSvc := &service.AuthService{
		Repo:     gormRepo,
		Hasher:   hasher,
		Issuer:   issuer,
		Producer: producer,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: authSvc},
		Users: &httpserver.UserHTTP{
			Svc: &service.UserService{Repo: gormRepo, Hasher: hasher, Producer: producer},
		},
		Reports: &httpserver.ReportHTTP{
			Shipments: &service.ShipmentService{
				Repo:     gormRepo,
				ES:       esClient,
				ESIndex:  "shipments",
				Producer: producer,
			},
			Reports: &service.ReportService{Repo: gormRepo},
		},
		AuthMw: middleware.NewAuth(authSvc),
	})

	sweepCtx, stopSweep := context.WithCancel(logging.IntoContext(context.Background(), logger))
	go sweepRevokedTokens(sweepCtx, authSvc)

	go func() {
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}

// sweepRevokedTokens drops revocation entries whose natural expiry has
// passed, once at startup and every sweepInterval after that.
func sweepRevokedTokens(ctx context.Context, svc *service.AuthService) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	svc.SweepRevokedTokens(ctx)

	for {
		select {
		case <-ticker.C:
			svc.SweepRevokedTokens(ctx)
		case <-ctx.Done():
			return
		}
	}
}
