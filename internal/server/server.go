package server

import (
	"backend-globetrekker/internal/auth"
	"backend-globetrekker/internal/config"
	"backend-globetrekker/internal/places"
	"backend-globetrekker/internal/routing"
	"backend-globetrekker/internal/stream"
	walksync "backend-globetrekker/internal/sync"
	"backend-globetrekker/internal/tracker"
	"backend-globetrekker/internal/walk"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	router := routing.NewClient(s.Cfg.GeocoderURL, s.Cfg.RouterURL, s.Redis)
	walkSvc := walk.NewService(s.DB, s.Stream)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB, s.Redis))
	tracker.RegisterRoutes(s.App.Group("/journey"), tracker.NewService(s.DB, router, walkSvc), jwtMiddleware)
	walk.RegisterRoutes(s.App.Group("/walks"), walkSvc, jwtMiddleware)
	walksync.RegisterRoutes(s.App.Group("/sync"), walksync.NewService(s.DB), jwtMiddleware)
	places.RegisterRoutes(s.App.Group("/places"), places.NewClient(s.Cfg.PlacesURL, s.Redis), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
