// Package server is the development ERP API used by erpctl's integration
// tests and for local work without a real ERP backend.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/minimalprod/erpctl/internal/auth"
	"github.com/minimalprod/erpctl/internal/config"
	"github.com/minimalprod/erpctl/internal/models"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	version   string
	now       func() time.Time
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	if err := models.Seed(db, auth.HashPassword); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	auth.InitializeJWT(cfg.MockAPI.JWTSecret)

	server := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		validator: validator.New(),
		version:   version,
		now:       time.Now,
	}

	if err := server.setupRouter(); err != nil {
		return nil, err
	}

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300 // 5 minutes
		busyTimeout     = 5000
		cacheSize       = 10000 // 10MB
	)

	db, err := gorm.Open(sqlite.Open(cfg.MockAPI.DatabaseURL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode must be set first
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.MockAPI.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints (no auth required)
	s.router.POST("/api/auth/login", s.login)

	authenticated := JWTAuthMiddleware(s.db, s.logger)

	s.router.POST("/graphql", authenticated, s.graphql)

	api := s.router.Group("/api")
	api.Use(authenticated)
	{
		api.POST("/auth/logout", s.logout)
		api.GET("/auth/me", s.getCurrentUser)

		api.GET("/maquinas/:id/depreciacion/grafico", s.depreciationChart)
	}

	return s.registerRecords(api)
}

// adminPaths are only served to users holding the ADMIN role
var adminPaths = map[string]bool{
	"/api/users":       true,
	"/api/roles":       true,
	"/api/tags":        true,
	"/api/permissions": true,
}

// registerRecords exposes every seeded document at its path. Collections
// whose items carry an id also get an item route, and report collections
// get pdf and excel exports.
func (s *Server) registerRecords(api *gin.RouterGroup) error {
	var records []models.Record
	if err := s.db.Order("path").Find(&records).Error; err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	for _, rec := range records {
		rel := strings.TrimPrefix(rec.Path, "/api")

		var guard []gin.HandlerFunc
		if adminPaths[rec.Path] {
			guard = append(guard, AdminOnlyMiddleware(s.logger))
		}
		chain := func(h gin.HandlerFunc) []gin.HandlerFunc {
			return append(slices.Clone(guard), h)
		}

		api.GET(rel, chain(s.getRecord(rec.Path))...)

		items, isCollection := collectionItems(rec.Body)
		if !isCollection {
			continue
		}
		if hasIDs(items) {
			api.GET(rel+"/:id", chain(s.getRecordItem(rec.Path))...)
		}
		if strings.HasPrefix(rec.Path, "/api/reportes/") {
			api.GET(rel+"/pdf", chain(s.exportRecord(rec.Path, formatPDF))...)
			api.GET(rel+"/excel", chain(s.exportRecord(rec.Path, formatExcel))...)
		}
	}

	return nil
}

func collectionItems(body string) ([]map[string]any, bool) {
	var items []map[string]any
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, false
	}
	return items, true
}

func hasIDs(items []map[string]any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := item["id"]; !ok {
			return false
		}
	}
	return true
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("request_id", c.GetHeader("X-Request-ID")).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": s.now().UTC(),
		"service":   "erp-mockapi",
		"version":   s.version,
	})
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close closes the database connection
func (s *Server) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve listens on the configured port until ctx is done
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.MockAPI.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error().Err(err).Msg("HTTP server error")
			return err
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Close flushes WAL writes
	if err := s.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
