package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/verdantlab/planthub/internal/auth"
	"github.com/verdantlab/planthub/internal/config"
	"github.com/verdantlab/planthub/internal/http/handlers"
	"github.com/verdantlab/planthub/internal/http/middlewares"
	"github.com/verdantlab/planthub/internal/observability"
	"github.com/verdantlab/planthub/internal/redisclient"
	"github.com/verdantlab/planthub/internal/repo/postgres"
	"github.com/verdantlab/planthub/internal/storage"
)

var imageExts = []string{"png", "jpg", "jpeg"}
var modelExts = []string{"pt", "ptl", "pth"}

type UsersStore interface {
	handlers.UserReader
	handlers.UserWriter
}

// Deps carries everything the route table needs, so tests can swap the
// postgres repos for the memory ones.
type Deps struct {
	Log     *slog.Logger
	Cfg     config.Config
	Users   UsersStore
	Rooms   handlers.RoomsStore
	Plants  handlers.PlantsStore
	Images  handlers.BlobStore
	Models  handlers.BlobStore
	JWT     *auth.Manager
	Limiter middlewares.Limiter
	Prom    *observability.Prom
	Ping    func() error
}

// NewRouter wires the production dependencies around the pgx pool.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) (*gin.Engine, error) {
	prom := observability.NewProm()

	images, err := storage.New(cfg.ImageDir, cfg.ImageMaxBytes, imageExts)

	if err != nil {
		return nil, err
	}

	models, err := storage.New(cfg.ModelDir, cfg.ModelMaxBytes, modelExts)

	if err != nil {
		return nil, err
	}

	var limiter middlewares.Limiter = middlewares.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		limiter = middlewares.NewRedisLimiter(rc.Raw(), cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	return NewRouterWith(Deps{
		Log:     log,
		Cfg:     cfg,
		Users:   postgres.NewUsersRepo(pool, prom),
		Rooms:   postgres.NewRoomsRepo(pool, prom),
		Plants:  postgres.NewPlantsRepo(pool, prom),
		Images:  images,
		Models:  models,
		JWT:     auth.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		Limiter: limiter,
		Prom:    prom,
		Ping:    ping,
	}), nil
}

func NewRouterWith(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(otelgin.Middleware("planthub"))

	if d.Prom != nil {
		r.Use(d.Prom.Middleware())
		r.GET("/metrics", d.Prom.Handler())
	}

	// health
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(d.Users, d.Users, d.JWT, d.Log)
	roomsHandler := handlers.NewRoomsHandler(d.Rooms, d.Images, d.Log)
	plantsHandler := handlers.NewPlantsHandler(d.Plants, d.Images, d.Log)
	uploadsHandler := handlers.NewUploadsHandler(d.Images, d.Models)
	datasetsHandler := handlers.NewDatasetsHandler()

	authMw := middlewares.NewAuthMiddleware(d.JWT, d.Users, d.Log)

	user := r.Group("/user")

	// credential endpoints are throttled by client IP
	public := user.Group("",
		middlewares.RateLimit(d.Limiter, middlewares.KeyByIP),
		middlewares.RequireJSON(),
		middlewares.MaxBodyBytes(1<<20),
	)
	public.POST("/signup", authHandler.SignUp)
	public.POST("/login", authHandler.Login)

	// uploads are multipart; body limit covers the largest upload kind
	uploads := user.Group("", middlewares.MaxBodyBytes(d.Cfg.ModelMaxBytes+1<<20))
	uploads.POST("/uploadImage", uploadsHandler.UploadImage)
	uploads.POST("/uploadModel", uploadsHandler.UploadModel)
	uploads.DELETE("/deleteImage", uploadsHandler.DeleteImage)
	uploads.DELETE("/deleteModel", uploadsHandler.DeleteModel)

	protected := user.Group("",
		authMw.RequireAuth(),
		middlewares.RequireJSON(),
		middlewares.MaxBodyBytes(1<<20),
	)
	protected.GET("/me", authHandler.Me)

	protected.POST("/createRoom", roomsHandler.CreateRoom)
	protected.GET("/getRoom", roomsHandler.ListRooms)
	protected.PUT("/updateRoom/:id", roomsHandler.UpdateRoom)
	protected.DELETE("/deleteRoom/:id", roomsHandler.DeleteRoom)

	protected.POST("/createPlant", plantsHandler.CreatePlant)
	protected.GET("/getPlant", plantsHandler.ListPlants)
	protected.PUT("/updatePlant/:id", plantsHandler.UpdatePlant)
	protected.DELETE("/deletePlant/:id", plantsHandler.DeletePlant)

	r.GET("/datasets/link", datasetsHandler.ListLinks)

	return r
}
