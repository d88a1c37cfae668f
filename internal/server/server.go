package server

import (
	"backend-evolveai/internal/config"
	"backend-evolveai/internal/engine"
	"backend-evolveai/internal/gps"
	"backend-evolveai/internal/store"
	"backend-evolveai/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Engine   *engine.Engine
	Workouts *store.Service
}

func NewServer(cfg config.Config, dbpool *pgxpool.Pool, redisClient *redis.Client, provider gps.Provider) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     dbpool,
		Redis:  redisClient,
		Stream: hub,
		Engine: engine.New(provider, hub, cfg.UserWeightKg),
	}
	if dbpool != nil {
		s.Workouts = store.NewService(dbpool)
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	RegisterTrackingRoutes(s.App.Group("/tracking"), s.Engine, s.Workouts)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
