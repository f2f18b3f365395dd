// Package wire provides dependency injection for the skiphire application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"

	cliadapter "github.com/example/skiphire/internal/adapters/cli"
	"github.com/example/skiphire/internal/adapters/cloudinary"
	"github.com/example/skiphire/internal/adapters/filesystem"
	"github.com/example/skiphire/internal/adapters/httpapi"
	"github.com/example/skiphire/internal/adapters/logging"
	"github.com/example/skiphire/internal/adapters/payment"
	"github.com/example/skiphire/internal/adapters/sqlite"
	"github.com/example/skiphire/internal/app"
	"github.com/example/skiphire/internal/config"
	"github.com/example/skiphire/internal/db"
	"github.com/example/skiphire/internal/ports/primary"
	"github.com/example/skiphire/internal/ports/secondary"
)

var (
	configDir      string
	cfg            *config.Config
	logger         *zap.Logger
	database       *sql.DB
	bookingService *app.BookingServiceImpl
	catalogService primary.CatalogService
	auditService   primary.AuditService
	initErr        error
	once           sync.Once
)

// SetConfigDir chooses the directory holding .skiphire/config.json.
// Must be called before any service is requested. Empty means the home directory.
func SetConfigDir(dir string) {
	configDir = dir
}

// Init builds every service. Later calls return the first result.
func Init() error {
	once.Do(initServices)
	return initErr
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return logger
}

// BookingService returns the singleton BookingService instance.
func BookingService() primary.BookingService {
	once.Do(initServices)
	return bookingService
}

// CatalogService returns the singleton CatalogService instance.
func CatalogService() primary.CatalogService {
	once.Do(initServices)
	return catalogService
}

// AuditService returns the singleton AuditService instance.
func AuditService() primary.AuditService {
	once.Do(initServices)
	return auditService
}

// Close releases the database, hooks and logger.
func Close() {
	if bookingService != nil {
		bookingService.Close()
	}
	if database != nil {
		_ = database.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	initErr = buildServices()
}

func buildServices() error {
	dir := configDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = home
	}

	var err error
	cfg, err = config.LoadConfig(dir)
	if err != nil {
		return err
	}

	logger, err = logging.NewLogger(cfg.LogLevel, cfg.Env, cfg.LogFile)
	if err != nil {
		return err
	}

	// Get database connection
	database, err = db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if added, err := db.SeedCatalog(database); err != nil {
		return err
	} else if added > 0 {
		logger.Info("seeded catalog", zap.Int("skips", added), zap.String("db", cfg.DBPath))
	}

	// Create secondary adapters
	catalogRepo := sqlite.NewCatalogRepository(database)
	gateway, err := newGateway(cfg)
	if err != nil {
		return err
	}
	photoStore, err := newPhotoStore(cfg)
	if err != nil {
		return err
	}
	auditRepo := sqlite.NewAuditRepository(database)
	auditWriter := logging.NewTeeLogWriter(
		logging.NewAuditLogWriter(logger),
		sqlite.NewLogWriterAdapter(auditRepo),
	)

	// Create services (primary ports implementation)
	catalogService = app.NewCatalogService(catalogRepo, cfg.Postcode)
	auditService = app.NewAuditService(auditRepo)
	bookingService = app.NewBookingService(
		catalogRepo,
		gateway,
		photoStore,
		auditWriter,
		clockz.RealClock,
		app.RetryPolicy{Interval: cfg.RetryIntervalDuration(), Burst: cfg.RetryBurst},
	)

	return registerNotifications(bookingService, logger)
}

func newGateway(cfg *config.Config) (secondary.PaymentGateway, error) {
	switch cfg.PaymentGateway {
	case "", config.GatewayStub:
		return payment.NewStubGateway(cfg.PaymentDelayDuration(), clockz.RealClock), nil
	case config.GatewayStripe:
		if cfg.StripeKey == "" {
			return nil, fmt.Errorf("payment_gateway is stripe but stripe_secret_key is not set")
		}
		return payment.NewStripeGateway(cfg.StripeKey), nil
	default:
		return nil, fmt.Errorf("unknown payment_gateway %q (expected %s or %s)", cfg.PaymentGateway, config.GatewayStub, config.GatewayStripe)
	}
}

func newPhotoStore(cfg *config.Config) (secondary.PhotoStore, error) {
	switch cfg.PhotoStore {
	case "", config.PhotoStoreFilesystem:
		return filesystem.NewPhotoStore(cfg.PhotoDir)
	case config.PhotoStoreCloudinary:
		return cloudinary.NewPhotoStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	default:
		return nil, fmt.Errorf("unknown photo_store %q (expected %s or %s)", cfg.PhotoStore, config.PhotoStoreFilesystem, config.PhotoStoreCloudinary)
	}
}

// registerNotifications logs booking lifecycle events.
func registerNotifications(svc primary.BookingService, logger *zap.Logger) error {
	events := logger.Named("events")
	if err := svc.OnConfirmed(func(ctx context.Context, ev primary.BookingEvent) error {
		events.Info("booking confirmed",
			zap.String("session_id", ev.SessionID),
			zap.String("reference", ev.Reference),
			zap.Int64("amount_minor", ev.AmountMinor),
		)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to register confirmation hook: %w", err)
	}
	if err := svc.OnPaymentFailed(func(ctx context.Context, ev primary.BookingEvent) error {
		events.Warn("payment failed",
			zap.String("session_id", ev.SessionID),
			zap.String("reference", ev.Reference),
			zap.String("reason", ev.Reason),
		)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to register payment failure hook: %w", err)
	}
	return nil
}

// CatalogAdapter returns a new CatalogAdapter writing to the given output.
// Each call creates a new adapter (adapters are stateless translators).
func CatalogAdapter(out io.Writer) *cliadapter.CatalogAdapter {
	once.Do(initServices)
	return cliadapter.NewCatalogAdapter(catalogService, out)
}

// WizardAdapter returns a new WizardAdapter writing to the given output.
func WizardAdapter(out io.Writer) *cliadapter.WizardAdapter {
	once.Do(initServices)
	return cliadapter.NewWizardAdapter(bookingService, catalogService, out)
}

// LogAdapter returns a new LogAdapter writing to the given output.
func LogAdapter(out io.Writer) *cliadapter.LogAdapter {
	once.Do(initServices)
	return cliadapter.NewLogAdapter(auditService, out)
}

// HTTPHandler returns the JSON API handler.
func HTTPHandler() *httpapi.Handler {
	once.Do(initServices)
	return httpapi.NewHandler(bookingService, catalogService, logger.Named("http"))
}
