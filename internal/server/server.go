package server

import (
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/config"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/corridor"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/delivery"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/stream"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/traffic"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/trips"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App       *fiber.App
	Cfg       config.Config
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Stream    *stream.Hub
	Traffic   *traffic.Cache
	Corridors *corridor.Store
	Session   *delivery.Session
	Trips     *trips.Service
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, corridors *corridor.Store) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	if corridors == nil {
		corridors = corridor.NewStore(nil)
	}

	hub := stream.NewHub(redisClient)
	trafficCache := traffic.NewCache()

	s := &Server{
		App:       app,
		Cfg:       cfg,
		DB:        db,
		Redis:     redisClient,
		Stream:    hub,
		Traffic:   trafficCache,
		Corridors: corridors,
		Session:   delivery.NewSession(trafficCache, hub),
	}
	if db != nil {
		s.Trips = trips.NewService(db)
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.App.Get("/traffic", func(c *fiber.Ctx) error {
		return c.JSON(s.Traffic.Snapshot())
	})
	s.App.Get("/traffic/:id", func(c *fiber.Ctx) error {
		sample, ok := s.Traffic.Lookup(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no traffic data for corridor")
		}
		return c.JSON(sample)
	})

	var targets delivery.TargetSource
	if s.Trips != nil {
		targets = s.Trips
		trips.RegisterRoutes(s.App.Group("/trips"), s.Trips)
	}
	delivery.RegisterRoutes(s.App.Group("/delivery"), s.Session, s.Corridors, targets)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
