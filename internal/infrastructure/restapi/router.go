package restapi

import (
	"portfolio_tracker/internal/app/port"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps holds the services the API is built on.
type Deps struct {
	Addresses port.AddressService
	Tags      port.TagService
	Portfolio port.PortfolioService
	Prices    port.TokenPriceService
	Reports   LastReporter
}

// Options tune the HTTP surface.
type Options struct {
	AllowedOrigins    []string
	AuthPassword      string
	AuthRequired      bool
	BasicAuthUser     string
	BasicAuthPassword string
	TransactionLimit  int
}

// Router wraps the gin engine with the API handlers.
type Router struct {
	engine           *gin.Engine
	logger           *zap.Logger
	opts             Options
	addressHandler   *AddressHandler
	tagHandler       *TagHandler
	portfolioHandler *PortfolioHandler
	priceHandler     *PriceHandler
	authHandler      *AuthHandler
}

// NewRouter creates a Router with all routes registered.
func NewRouter(deps Deps, opts Options, logger *zap.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:           gin.New(),
		logger:           logger,
		opts:             opts,
		addressHandler:   NewAddressHandler(deps.Addresses, deps.Portfolio),
		tagHandler:       NewTagHandler(deps.Tags),
		portfolioHandler: NewPortfolioHandler(deps.Portfolio, deps.Reports, opts.TransactionLimit),
		priceHandler:     NewPriceHandler(deps.Prices),
		authHandler:      NewAuthHandler(opts.AuthPassword),
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

func (r *Router) setupMiddleware() {
	r.engine.Use(Recovery(r.logger))
	r.engine.Use(RequestLogger(r.logger))
	r.engine.Use(CORS(r.opts.AllowedOrigins))
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Password check stays reachable without basic auth.
	r.engine.POST("/api/auth", r.authHandler.Login)

	api := r.engine.Group("/api")
	if gate := BasicAuthGate(r.opts.AuthRequired, r.opts.BasicAuthUser, r.opts.BasicAuthPassword); gate != nil {
		api.Use(gate)
	}
	{
		api.GET("/prices", r.priceHandler.GetPrices)
		api.GET("/chains", GetChains)
		api.GET("/portfolio", r.portfolioHandler.GetPortfolio)
		api.GET("/transactions", r.portfolioHandler.GetTransactions)
		api.POST("/refresh", r.portfolioHandler.RefreshAll)
		api.GET("/refresh/last", r.portfolioHandler.LastRefresh)

		addresses := api.Group("/addresses")
		{
			addresses.GET("", r.addressHandler.List)
			addresses.POST("", r.addressHandler.Create)
			addresses.GET("/:id", r.addressHandler.Get)
			addresses.PUT("/:id", r.addressHandler.Update)
			addresses.DELETE("/:id", r.addressHandler.Delete)
			addresses.POST("/:id/refresh", r.addressHandler.Refresh)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", r.tagHandler.List)
			tags.POST("", r.tagHandler.Create)
			tags.PUT("/:id", r.tagHandler.Update)
			tags.DELETE("/:id", r.tagHandler.Delete)
		}
	}
}

// Engine returns the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
