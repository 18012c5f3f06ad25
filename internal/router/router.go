// Package router builds the echo instance: middleware chain and routes.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/festival-coordinator/internal/config"
	"github.com/iliyamo/festival-coordinator/internal/handler"
	"github.com/iliyamo/festival-coordinator/internal/middleware"
	"github.com/iliyamo/festival-coordinator/internal/queue"
	"github.com/iliyamo/festival-coordinator/internal/repository"
	"github.com/iliyamo/festival-coordinator/internal/validation"
)

// Deps are the collaborators the router wires into handlers and
// middleware. Redis and Events are optional; without Redis the cache and
// rate limiter are pass-through.
type Deps struct {
	Gateway     repository.Gateway
	Redis       *redis.Client
	Cache       config.CacheConfig
	RateLimit   config.RateLimitConfig
	CORSOrigins []string
	Registry    *prometheus.Registry
	Events      queue.Publisher
}

// New returns an echo instance serving the whole API.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// CORS runs before routing so preflight requests never hit a 405.
	e.Pre(middleware.CORS(d.CORSOrigins))
	e.Use(
		echomw.Recover(),
		middleware.NewMetrics(reg).Middleware(),
		middleware.CorrelationID(),
		middleware.RequestLogger(),
	)

	h := handler.New(d.Gateway, d.Events)
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := e.Group("",
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
		middleware.NewRedisCache(d.Cache, d.Redis),
	)
	RegisterRoutes(api, h)
	return e
}

// RegisterRoutes maps the entity routes. Groups and festivals are
// read/create only; members also support update and delete.
func RegisterRoutes(g *echo.Group, h *handler.Handler) {
	g.GET("/groups", h.ListGroups)
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups/:id", h.GetGroup)
	g.GET("/groups/:id/members", h.ListGroupMembers)
	g.GET("/groups/:id/festivals", h.ListGroupFestivals)

	g.GET("/members", h.ListMembers)
	g.POST("/members", h.CreateMember)
	g.GET("/members/:id", h.GetMember)
	g.PATCH("/members/:id", h.UpdateMember)
	g.DELETE("/members/:id", h.DeleteMember)

	g.GET("/calls", h.ListCalls)
	g.POST("/calls", h.CreateCall)
	g.GET("/calls/:id", h.GetCall)

	g.GET("/festivals", h.ListFestivals)
	g.POST("/festivals", h.CreateFestival)
	g.GET("/festivals/:id", h.GetFestival)

	g.GET("/artists", h.ListArtists)
	g.POST("/artists", h.CreateArtist)
	g.GET("/artists/:id", h.GetArtist)

	g.GET("/festival-catalog", h.ListCatalog)
	g.POST("/festival-catalog", h.CreateCatalogEntry)
	g.GET("/festival-catalog/search", h.SearchCatalog)

	g.GET("/reviews", h.ListReviews)
	g.POST("/reviews", h.CreateReview)
	g.GET("/reviews/:id", h.GetReview)
}
