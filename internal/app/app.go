package app

import (
	"context"
	"fmt"

	"figurevault/internal/auth"
	"figurevault/internal/cache"
	"figurevault/internal/catalog"
	"figurevault/internal/collection"
	"figurevault/internal/config"
	"figurevault/internal/database"
	"figurevault/internal/httpapi"
	"figurevault/internal/images"
	"figurevault/internal/importer"
	"figurevault/internal/logging"
	"figurevault/internal/moderation"
	"figurevault/internal/rates"
	"figurevault/internal/sqlproxy"
	"figurevault/internal/storage"
	"figurevault/internal/wishlist"
)

// App holds all application dependencies
type App struct {
	Config         *config.Config
	Logger         *logging.Logger
	Cache          cache.Cache
	CatalogSvc     *catalog.Service
	CollectionSvc  *collection.Service
	WishlistSvc    *wishlist.Service
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	ImageSvc       *images.Service
	RatesSvc       *rates.Service
	Importer       *importer.Importer
	HTTPServer     *httpapi.Server

	db        *database.DB
	userStore *database.UserStore
	sqlProxy  *sqlproxy.Proxy
}

// New creates and initializes a new App instance
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	app.Logger = app.initLogger()
	app.Cache = app.initCache()

	db, err := database.New(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.db = db

	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	catalogStore := database.NewCatalogStore(db)
	collectionStore := database.NewCollectionStore(db)
	wishlistStore := database.NewWishlistStore(db)
	app.userStore = database.NewUserStore(db)

	app.AuthService = auth.NewService(app.userStore, cfg.Auth, app.Logger)
	app.AuthMiddleware = auth.NewMiddleware(app.AuthService)

	app.CatalogSvc = catalog.NewService(catalogStore, collectionStore, wishlistStore, app.Cache, app.Logger)
	app.CollectionSvc = collection.NewService(collectionStore, app.Logger)
	app.WishlistSvc = wishlist.NewService(wishlistStore, collectionStore, app.Logger)

	app.ImageSvc = app.initImages(ctx)
	app.RatesSvc = rates.NewService(cfg.Rates, app.Cache, app.Logger)
	app.Importer = importer.New(catalogStore, cfg.Import, app.Logger)
	app.sqlProxy = app.initSQLProxy()

	app.HTTPServer = httpapi.New(
		app.CatalogSvc,
		app.CollectionSvc,
		app.WishlistSvc,
		app.AuthService,
		app.AuthMiddleware,
		app.userStore,
		app.ImageSvc,
		app.RatesSvc,
		app.Importer,
		app.sqlProxy,
		app.Logger,
	)

	return app, nil
}

// Run starts the HTTP server
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.HTTPServer.Start(a.Config.Server.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}

	if a.sqlProxy != nil {
		if err := a.sqlProxy.Close(); err != nil {
			a.Logger.Error("SQL proxy close error", logging.WithField("error", err.Error()))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
		}
	}

	return nil
}

func (a *App) initLogger() *logging.Logger {
	level := logging.LevelInfo
	switch a.Config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(level)
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr:   a.Config.Cache.RedisAddr,
			Prefix: "figurevault:",
		}, a.Config.Cache.TTL)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
			return cache.NewMemory(a.Config.Cache.TTL)
		}
		return redisCache
	default:
		a.Logger.Info("Using in-memory cache backend")
		return cache.NewMemory(a.Config.Cache.TTL)
	}
}

func (a *App) initImages(ctx context.Context) *images.Service {
	var store storage.ObjectStore
	if a.Config.Storage.Endpoint != "" {
		minioStore, err := storage.NewMinioStore(ctx, a.Config.Storage)
		if err != nil {
			a.Logger.Error("Failed to connect to object storage, falling back to memory store", logging.WithField("error", err.Error()))
			store = storage.NewMemoryStore()
		} else {
			a.Logger.Info("Using S3-compatible object storage", logging.WithField("bucket", a.Config.Storage.Bucket))
			store = minioStore
		}
	} else {
		a.Logger.Warn("No object storage configured, uploads are held in memory")
		store = storage.NewMemoryStore()
	}

	var moderator images.Moderator
	if a.Config.Moderation.Enabled {
		detector, err := moderation.NewAWSDetector(ctx, a.Config.Moderation.AWSRegion)
		if err != nil {
			a.Logger.Warn("Image moderation unavailable, uploads will be refused as unverified", logging.WithField("error", err.Error()))
		} else {
			moderator = moderation.NewService(detector, a.Config.Moderation.RejectConfidence)
		}
	}

	return images.NewService(moderator, store, a.Config.Moderation.Enabled, a.Config.Moderation.Timeout, a.Logger)
}

func (a *App) initSQLProxy() *sqlproxy.Proxy {
	if a.Config.SQLProxy.DSN == "" {
		return nil
	}

	proxy, err := sqlproxy.New(a.Config.SQLProxy.DSN, a.Logger)
	if err != nil {
		a.Logger.Error("Failed to connect SQL proxy, endpoint disabled", logging.WithField("error", err.Error()))
		return nil
	}

	a.Logger.Info("SQL proxy enabled")
	return proxy
}
