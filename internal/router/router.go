package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/smilecare/scheduler-api/internal/handler"
	appointmentHandler "github.com/smilecare/scheduler-api/internal/handler/appointment"
	availabilityHandler "github.com/smilecare/scheduler-api/internal/handler/availability"
	healthHandler "github.com/smilecare/scheduler-api/internal/handler/health"
	"github.com/smilecare/scheduler-api/internal/middleware"
)

type Config struct {
	RateLimit  rate.Limit
	RateBurst  int
	Timeout    time.Duration
	CORSConfig middleware.CORSConfig
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	appointmentH  *appointmentHandler.Handler
	availabilityH *availabilityHandler.Handler
	healthH       *healthHandler.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	appointmentH *appointmentHandler.Handler,
	availabilityH *availabilityHandler.Handler,
	healthH *healthHandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	handler.RegisterValidations()

	return &Router{
		engine:        engine,
		auth:          auth,
		appointmentH:  appointmentH,
		availabilityH: availabilityH,
		healthH:       healthH,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.healthH.RegisterRoutes(api)
	r.availabilityH.RegisterRoutes(api)
	r.appointmentH.RegisterRoutes(api, r.auth)

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
