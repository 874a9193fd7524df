// Package container wires the application graph: database, repositories,
// external adapters, services and the HTTP server. Initialization is ordered;
// Close tears down in reverse.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/application/service"
	"github.com/markreg/caseflow/internal/config"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
	"github.com/markreg/caseflow/internal/docs"
	"github.com/markreg/caseflow/internal/export"
	"github.com/markreg/caseflow/internal/infrastructure/external/lark"
	"github.com/markreg/caseflow/internal/infrastructure/external/openai"
	"github.com/markreg/caseflow/internal/infrastructure/persistence/repository"
	"github.com/markreg/caseflow/internal/infrastructure/persistence/sqlite"
	"github.com/markreg/caseflow/internal/infrastructure/storage"
	httpiface "github.com/markreg/caseflow/internal/interfaces/http"
	"github.com/markreg/caseflow/pkg/database"
	"go.uber.org/zap"
)

// RepositoryBundle groups all repositories
type RepositoryBundle struct {
	Cases         *repository.CaseRepository
	Documents     *repository.DocumentRepository
	History       *repository.HistoryRepository
	Invoices      *repository.InvoiceRepository
	Notifications *repository.NotificationRepository
	Users         *repository.UserRepository
}

// ServiceBundle groups all application services
type ServiceBundle struct {
	Cases         service.CaseService
	Invoices      service.InvoiceService
	Notifications service.NotificationService
}

// Container holds the wired application graph
type Container struct {
	cfg    *config.Config
	logger *zap.Logger

	sqlDB     *sql.DB
	txManager *sqlite.DB

	Repos    *RepositoryBundle
	Services *ServiceBundle
	Server   *httpiface.Server
}

// New builds the full dependency graph and runs pending migrations
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	txManager := sqlite.NewDB(sqlDB, logger)

	repos := &RepositoryBundle{
		Cases:         repository.NewCaseRepository(sqlDB, logger),
		Documents:     repository.NewDocumentRepository(sqlDB, logger),
		History:       repository.NewHistoryRepository(sqlDB, logger),
		Invoices:      repository.NewInvoiceRepository(sqlDB, logger),
		Notifications: repository.NewNotificationRepository(sqlDB, logger),
		Users:         repository.NewUserRepository(sqlDB, logger),
	}

	serviceLogger := &zapLoggerAdapter{logger: logger}

	var channel port.MessageChannel
	if cfg.Lark.Enabled {
		channel = lark.NewMessenger(lark.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
		}, logger)
		logger.Info("Lark messenger enabled")
	}

	var advisor port.BrandAdvisor
	if cfg.OpenAI.Enabled {
		advisor = openai.NewAdvisor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger)
		logger.Info("Brand advisor enabled", zap.String("model", cfg.OpenAI.Model))
	}

	notificationService := service.NewNotificationService(repos.Notifications, repos.Users, channel, serviceLogger)

	services := &ServiceBundle{
		Notifications: notificationService,
		Cases: service.NewCaseService(
			repos.Cases, repos.Documents, repos.History, repos.Invoices,
			txManager, notificationService, advisor, serviceLogger,
		),
		Invoices: service.NewInvoiceService(
			repos.Cases, repos.Invoices, repos.History,
			txManager, notificationService, serviceLogger,
		),
	}

	fileStorage := storage.NewLocalFileStorage(cfg.Storage.BaseDir, logger)
	uploads := httpiface.NewUploadHandler(
		fileStorage,
		docs.NewValidator(logger),
		export.NewRegisterWriter(logger),
		serviceLogger,
	)

	server := httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		services.Cases, services.Invoices, services.Notifications,
		uploads, repos.Users, serviceLogger,
	)

	return &Container{
		cfg:       cfg,
		logger:    logger,
		sqlDB:     sqlDB,
		txManager: txManager,
		Repos:     repos,
		Services:  services,
		Server:    server,
	}, nil
}

// EnsureAdmin creates the bootstrap admin user when it does not exist yet
func (c *Container) EnsureAdmin(ctx context.Context) error {
	admin := c.cfg.Admin

	existing, err := c.Repos.Users.GetByID(ctx, admin.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	if err := c.Repos.Users.Create(ctx, bootstrapAdmin(admin)); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	c.logger.Info("Bootstrap admin created", zap.String("user_id", admin.UserID))
	return nil
}

// Close releases held resources
func (c *Container) Close() error {
	c.logger.Info("Closing database connection")
	return c.sqlDB.Close()
}

func bootstrapAdmin(admin config.AdminConfig) *entity.User {
	return &entity.User{
		ID:        admin.UserID,
		Name:      admin.Name,
		Role:      workflow.RoleAdmin,
		Token:     admin.Token,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// zapLoggerAdapter adapts zap.Logger to the keysAndValues logger interfaces
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
