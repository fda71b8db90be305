/*
Package server exposes the listing and summary pipelines over HTTP.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

type Options struct {
	StaticDir string
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

// NewRouter wires the API routes, CORS, request ids, access logging and panic recovery.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(requestID(), accessLog(opts.Logger, h.metrics))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		opts.Logger.Error("panic while handling request", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
	}))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          time.Hour,
	}))

	if opts.StaticDir != "" {
		index := filepath.Join(opts.StaticDir, "index.html")
		r.GET("/", func(c *gin.Context) { c.File(index) })
		files := http.FileServer(http.Dir(opts.StaticDir))
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet {
				c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	} else {
		r.GET("/", h.GetRoot)
		r.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		})
	}

	r.GET("/healthz", h.GetHealth)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.POST("/tdnet", h.GetListings)
	api.POST("/summary", h.GetSummary)

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, fmt.Sprint(status)).Observe(time.Since(start).Seconds())

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

// Run serves router on port until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, router http.Handler, port int, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("TDnet viewer server running", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// StaticDirExists reports whether dir is a readable directory.
func StaticDirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
