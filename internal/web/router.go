package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter assembles the gin engine: templates, middleware, and the
// full route table including the Prometheus scrape endpoint.
func NewRouter(h *Handler, log *zap.Logger) (*gin.Engine, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := staticRoot()
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if log != nil {
		router.Use(requestLogger(log))
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/", h.Home)
	router.GET("/login", h.LoginPage)
	router.POST("/login", h.LoginSubmit)
	router.GET("/register", h.RegisterPage)
	router.POST("/register", h.RegisterSubmit)
	router.GET("/forgot-password", h.ForgotPasswordPage)
	router.GET("/logout", h.Logout)
	router.GET("/dashboard", h.Dashboard)
	router.GET("/user/dashboard", h.Dashboard)
	router.GET("/admin/dashboard", h.AdminDashboard)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.StaticFS("/static", http.FS(static))

	return router, nil
}

// requestLogger logs one line per request with method, path, status, and
// latency. The scrape endpoint is skipped to keep the log readable.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		if c.FullPath() == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
