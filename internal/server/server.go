package server

import (
	"time"

	"github.com/zoonmattau/healthtracker-sub000/internal/auth"
	"github.com/zoonmattau/healthtracker-sub000/internal/config"
	"github.com/zoonmattau/healthtracker-sub000/internal/datastore"
	"github.com/zoonmattau/healthtracker-sub000/internal/db"
	"github.com/zoonmattau/healthtracker-sub000/internal/export"
	"github.com/zoonmattau/healthtracker-sub000/internal/feedback"
	"github.com/zoonmattau/healthtracker-sub000/internal/metrics"
	"github.com/zoonmattau/healthtracker-sub000/internal/profile"
	"github.com/zoonmattau/healthtracker-sub000/internal/storage"
	"github.com/zoonmattau/healthtracker-sub000/internal/stream"
	"github.com/zoonmattau/healthtracker-sub000/internal/timer"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Stream  *stream.Hub
	Timers  *timer.Service
	Data    *datastore.Service
	Profile *profile.Service
	Auth    *auth.Service
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client) *Server {
	metrics.Register()

	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	hub := stream.NewHub(redisClient, cfg.StoragePrefix)
	store := storage.NewStore(redisClient, cfg.StoragePrefix)

	var querier db.Querier
	if pg != nil {
		querier = pg
	}
	profiles := profile.NewService(querier)

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      pg,
		Redis:   redisClient,
		Stream:  hub,
		Profile: profiles,
		Auth:    auth.NewService(cfg.JWTSecret),
		Data:    datastore.NewService(store, profiles),
		Timers: timer.NewService(store, feedback.NewStreamNotifier(hub), hub, timer.Options{
			DefaultDurationSeconds: cfg.DefaultRestSeconds,
			TickInterval:           time.Duration(cfg.TimerTickMs) * time.Millisecond,
		}),
	}

	registerRoutes(s)
	return s
}

// Close stops every countdown and the event hub.
func (s *Server) Close() {
	s.Timers.Close()
	_ = s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", metrics.Handler())

	jwtMiddleware := auth.JWTMiddleware(s.Auth)

	auth.RegisterRoutes(s.App.Group("/auth"), s.Auth)
	timer.RegisterRoutes(s.App.Group("/timer"), s.Timers, jwtMiddleware)
	datastore.RegisterRoutes(s.App.Group("/data"), s.Data, jwtMiddleware)
	profile.RegisterRoutes(s.App.Group("/profile"), s.Profile, jwtMiddleware)
	export.RegisterRoutes(s.App.Group("/export"), export.NewService(s.Data), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}
