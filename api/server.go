package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quantlab/config"
	"quantlab/recorder"
)

// Server HTTP服务器
type Server struct {
	engine *gin.Engine
	server *http.Server
	cfg    *config.Config
	rec    recorder.Recorder
}

// NewServer 创建服务器
func NewServer(cfg *config.Config, rec recorder.Recorder) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(loggerMiddleware())

	s := &Server{
		engine: engine,
		cfg:    cfg,
		rec:    rec,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: engine,
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	handler := NewHandler(s.cfg, s.rec)

	api := s.engine.Group("/api")
	{
		// 回测
		api.POST("/backtest", handler.RunBacktest)
		api.POST("/compare", handler.CompareStrategies)
		api.GET("/strategies", handler.GetStrategies)

		// 信号扫描
		api.GET("/scan", handler.Scan)

		// 历史运行
		api.GET("/runs", handler.GetRuns)
	}

	// 健康检查
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus指标
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start 启动服务器
func (s *Server) Start() error {
	log.Printf("[API] 服务启动在 http://localhost%s\n", s.server.Addr)
	log.Println("[API] 可用接口:")
	log.Println("  POST /api/backtest   - 运行回测")
	log.Println("  POST /api/compare    - 多策略对比")
	log.Println("  GET  /api/strategies - 可用策略列表")
	log.Println("  GET  /api/scan       - 扫描监控列表信号")
	log.Println("  GET  /api/runs       - 历史回测运行")
	log.Println("  GET  /metrics        - Prometheus指标")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// loggerMiddleware 日志中间件
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log.Printf("[API] %s %s %d %v\n", c.Request.Method, path, status, latency)
	}
}

// corsMiddleware CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
