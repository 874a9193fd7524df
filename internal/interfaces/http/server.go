// Package http provides the HTTP adapter over the application services.
// Handlers translate requests into service calls and error kinds into
// status codes; no business rules live here.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/application/service"
	"github.com/markreg/caseflow/internal/domain/workflow"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	userRepo   port.UserRepository
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	caseService service.CaseService,
	invoiceService service.InvoiceService,
	notificationService service.NotificationService,
	uploads *UploadHandler,
	userRepo port.UserRepository,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(caseService, invoiceService, notificationService, uploads, logger),
		userRepo: userRepo,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
}

// loggingMiddleware logs every request with latency and status
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

const actorKey = "actor"

// authMiddleware resolves the Bearer token to an actor and stores it in the
// request context
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		user, err := s.userRepo.GetByToken(c.Request.Context(), token)
		if err != nil {
			s.logger.Error("Token lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
				Success: false,
				Error:   "authentication unavailable",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "unknown token",
			})
			return
		}

		c.Set(actorKey, workflow.Actor{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// actorFrom returns the authenticated actor placed by authMiddleware
func actorFrom(c *gin.Context) workflow.Actor {
	actor, _ := c.MustGet(actorKey).(workflow.Actor)
	return actor
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api/v1")
	api.Use(s.authMiddleware())
	{
		api.GET("/cases", s.handlers.ListCases)
		api.GET("/cases/export", s.handlers.ExportCases)
		api.GET("/cases/:id", s.handlers.GetCase)
		api.POST("/cases", s.handlers.CreateCase)
		api.DELETE("/cases/:id", s.handlers.DeleteCase)

		api.POST("/cases/:id/mark-contacted", s.handlers.MarkContacted)
		api.POST("/cases/:id/send-for-review", s.handlers.SendForReview)
		api.POST("/cases/:id/review-brand", s.handlers.ReviewBrand)
		api.POST("/cases/:id/submit-documents", s.handlers.SubmitDocuments)
		api.POST("/cases/:id/return-documents", s.handlers.ReturnDocuments)
		api.POST("/cases/:id/send-to-lawyer", s.handlers.SendToLawyer)
		api.POST("/cases/:id/accept-by-lawyer", s.handlers.AcceptByLawyer)
		api.POST("/cases/:id/complete-by-lawyer", s.handlers.CompleteByLawyer)
		api.POST("/cases/:id/archive", s.handlers.Archive)
		api.POST("/cases/:id/reject", s.handlers.Reject)

		api.POST("/cases/:id/send-invoice", s.handlers.SendInvoice)
		api.POST("/cases/:id/invoices/:invoiceId/upload-receipt", s.handlers.UploadReceipt)
		api.POST("/cases/:id/invoices/:invoiceId/approve-receipt", s.handlers.ApproveReceipt)

		api.POST("/documents", s.handlers.UploadDocument)

		api.GET("/notifications", s.handlers.ListNotifications)
		api.POST("/notifications/:id/read", s.handlers.MarkNotificationRead)
	}
}

// Start begins serving and blocks until the listener fails
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests
func (s *Server) Router() http.Handler {
	return s.router
}
