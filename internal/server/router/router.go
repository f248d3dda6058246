package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/metrics"
	"github.com/mamadbah2/harvest/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.Handler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestID())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", handler.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := r.Group("/api/v1", handler.Authenticate())
	view := handlers.Require(models.CapView)
	edit := handlers.Require(models.CapEdit)
	del := handlers.Require(models.CapDelete)

	entities := map[string]handlers.EntityRoutes{
		"/producers":         handler.Producers(),
		"/customers":         handler.Customers(),
		"/agencies":          handler.Agencies(),
		"/storage-locations": handler.StorageLocations(),
	}
	for path, routes := range entities {
		g := api.Group(path)
		g.GET("", view, routes.List)
		g.POST("", edit, routes.Create)
		g.PUT("/:id", edit, routes.Update)
		g.DELETE("/:id", del, routes.Delete)
	}

	receipts := api.Group("/receipts")
	receipts.GET("", view, handler.ListReceipts)
	receipts.GET("/:id", view, handler.GetReceipt)
	receipts.POST("", edit, handler.CreateReceipt)
	receipts.PUT("/:id", edit, handler.UpdateReceipt)
	receipts.DELETE("/:id", del, handler.DeleteReceipt)

	orders := api.Group("/orders")
	orders.GET("", view, handler.ListOrders)
	orders.GET("/:id", view, handler.GetOrder)
	orders.POST("", edit, handler.CreateOrder)
	orders.PUT("/:id", edit, handler.UpdateOrder)
	orders.DELETE("/:id", del, handler.DeleteOrder)

	api.GET("/storage", view, handler.Storage)
	api.GET("/storage/:id", view, handler.StorageUsage)

	reports := api.Group("/reports", view)
	reports.GET("/receipts", handler.ReceiptReport)
	reports.GET("/orders", handler.OrderReport)
	reports.GET("/rollup/producers", handler.ProducerRollup)
	reports.GET("/rollup/customers", handler.CustomerRollup)

	exports := api.Group("/export", view)
	exports.GET("/workbook.xlsx", handler.Workbook)
	exports.GET("/csv/:table", handler.TableCSV)

	api.POST("/reload", view, handler.Reload)

	users := api.Group("/users", handlers.Require(models.CapManageUsers))
	users.GET("", handler.ListUsers)
	users.POST("", handler.AddUser)
	users.PUT("/:username", handler.UpdateUser)
	users.DELETE("/:username", handler.RemoveUser)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}
