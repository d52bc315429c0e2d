package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(inv *handlers.InventoryHandler, bc *handlers.BroadcastHandler, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	stock := r.Group("/stock")
	stock.GET("", inv.ListStock)
	stock.POST("", inv.CreateStock)
	stock.GET("/stream", inv.StreamStock)
	stock.POST("/bulk-deduct", inv.BulkDeduct)
	stock.POST("/:id/adjust", inv.AdjustStock)
	stock.GET("/:id/movements", inv.Movements)

	r.GET("/forecast", inv.Forecast)

	tasks := r.Group("/tasks")
	tasks.GET("", inv.ListTasks)
	tasks.POST("", inv.CreateTask)
	tasks.GET("/stream", inv.StreamTasks)
	tasks.POST("/:id/toggle", inv.ToggleTask)

	b := r.Group("/broadcast")
	b.GET("", bc.State)
	b.POST("/scan", bc.Scan)
	b.PUT("/message", bc.SetMessage)
	b.PUT("/recipients/:index", bc.SelectRecipient)
	b.POST("/send", bc.Send)
	b.POST("/permissions/:name", bc.Permission)

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
			zap.String("client_ip", c.ClientIP()))
	}
}
