package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"commerce-core/internal/handler/api"
	"commerce-core/internal/handler/middleware"
	"commerce-core/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, orderHandler *api.OrderHandler, paymentHandler *api.PaymentHandler, identity *middleware.IdentityMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, orderHandler, paymentHandler, identity)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, orderHandler *api.OrderHandler, paymentHandler *api.PaymentHandler, identity *middleware.IdentityMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	engine.GET("/delivery-zones", orderHandler.ListDeliveryZones)

	orders := engine.Group("/order")
	orders.Use(identity.RequireShopper())
	{
		addRoutes(orders, []route{
			{Method: http.MethodPost, Path: "/create-order", Handler: orderHandler.CreateOrder},
			{Method: http.MethodGet, Path: "/list", Handler: orderHandler.ListMyOrders},
			{Method: http.MethodGet, Path: "/by-number/:number", Handler: orderHandler.GetOrderByNumber},
			{Method: http.MethodGet, Path: "/:id", Handler: orderHandler.GetOrder},
		})
	}

	// Gateway-facing callbacks carry no shopper identity; the transaction ID
	// in the payload is the only correlation.
	payments := engine.Group("/payment")
	{
		addRoutes(payments, []route{
			{Method: http.MethodPost, Path: "/success", Handler: paymentHandler.Success},
			{Method: http.MethodPost, Path: "/fail", Handler: paymentHandler.Fail},
			{Method: http.MethodPost, Path: "/cancel", Handler: paymentHandler.Cancel},
			{Method: http.MethodPost, Path: "/ipn", Handler: paymentHandler.IPN},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
