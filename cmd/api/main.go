package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/config"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/corridor"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/db"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/delivery"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/server"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/traffic"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	loadCorridors   func(string) (*corridor.Store, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, *corridor.Store, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		loadCorridors:   corridor.LoadStore,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Printf("postgres connection failed: %v", err)
	}

	rdb := deps.connectRedis(cfg)

	corridors, err := deps.loadCorridors(cfg.CorridorGeoJSON)
	if err != nil {
		log.Printf("corridor load failed: %v", err)
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, corridors, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and the simulation loops, then waits for
// termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, corridors *corridor.Store, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(cfg, pg, rdb, corridors)

	if listen == nil {
		listen = defaultListen
	}

	loopCtx, cancelLoops := context.WithCancel(ctx)
	defer cancelLoops()

	fetcher := traffic.NewFetcher(cfg.TrafficFeedURL, srv.Traffic)
	go fetcher.Run(loopCtx, secondsOr(cfg.TrafficSeconds, 60))
	go tickLoop(loopCtx, srv.Session, secondsOr(cfg.TickSeconds, 1))
	if srv.Trips != nil {
		reconciler := delivery.NewReconciler(srv.Session, srv.Trips, cfg.DefaultSpeedKmh)
		go reconciler.Run(loopCtx, secondsOr(cfg.SyncSeconds, 5))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	cancelLoops()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}

func tickLoop(ctx context.Context, session *delivery.Session, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			session.Tick(interval.Seconds())
		}
	}
}

func secondsOr(n int, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
