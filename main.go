package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Irisfrogy/data-visulization/cache"
	"github.com/Irisfrogy/data-visulization/config"
	"github.com/Irisfrogy/data-visulization/models"
	"github.com/Irisfrogy/data-visulization/server"
	"github.com/Irisfrogy/data-visulization/services"
	"github.com/Irisfrogy/data-visulization/snapshot"
	"github.com/Irisfrogy/data-visulization/storage"
	"github.com/Irisfrogy/data-visulization/utils"
)

func main() {
	var (
		configPath   = flag.String("config", "", "optional TOML config file")
		debug        = flag.Bool("debug", false, "debug mode: verbose logs and /debug routes")
		snapshotPath = flag.String("snapshot", "", "render the dashboard to this PNG and exit")
	)
	flag.Parse()

	logger := utils.NewLogger()
	if err := run(logger, *configPath, *debug, *snapshotPath); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(logger *utils.Logger, configPath string, debug bool, snapshotPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if debug {
		cfg.Debug = true
	}
	logger.SetDebug(cfg.Debug)

	logger.Info("=== NYC Airbnb dashboard starting ===")
	logger.Info("Config — source: %s | port: %d | debug: %v | sync store: %q",
		cfg.DataSource, cfg.Port, cfg.Debug, cfg.SyncStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Second,
		Logger:      logger,
	}

	listings, err := loadListings(ctx, cfg, retry, logger)
	if err != nil {
		return err
	}
	dataset := models.NewDataset(listings)
	logger.Info("Dataset ready: %d listings, %d neighbourhood groups, %d room types",
		dataset.Len(), len(dataset.Regions), len(dataset.RoomTypes))

	var (
		viewCache   services.ViewCache
		cacheStatus server.CacheStatus
	)
	if rc := connectCache(ctx, cfg, dataset.Fingerprint(), logger); rc != nil {
		defer rc.Close()
		viewCache, cacheStatus = rc, rc
	}

	svc := services.NewDashboardService(dataset, viewCache, logger)
	if cfg.Debug {
		insights := svc.Insights()
		insights.Print(os.Stdout, "NYC AIRBNB LISTINGS", insights.Generate(dataset.Listings))
	}
	if cfg.WarmCache {
		svc.Warm(ctx, services.AllFilters(dataset), cfg.WarmConcurrency, cfg.WarmRateMs)
	}

	app := server.NewApp(cfg, svc, cacheStatus, logger)
	if snapshotPath != "" {
		return captureSnapshot(ctx, app, cfg, snapshotPath, logger)
	}
	return errors.Wrap(app.Run(ctx), "serve dashboard")
}

// loadListings returns the cleaned snapshot, from the CSV file or from the
// configured SQL store. When reading CSV with SYNC_STORE set, the snapshot
// is mirrored into the store first.
func loadListings(ctx context.Context, cfg *config.Config, retry *utils.RetryConfig, logger *utils.Logger) ([]*models.Listing, error) {
	driver, dsn := cfg.StoreDriver()

	if cfg.DataSource != config.SourceCSV {
		store, err := storage.NewSQLStore(ctx, driver, dsn, retry)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s store", cfg.DataSource)
		}
		defer store.Close()

		listings, err := store.FetchAll()
		if err != nil {
			return nil, errors.Wrap(err, "fetch listings")
		}
		if len(listings) == 0 {
			return nil, errors.Errorf("%s store holds no listings", cfg.DataSource)
		}
		logger.Info("Loaded %d listings from %s", len(listings), cfg.DataSource)
		return listings, nil
	}

	raw, err := storage.ReadCSVFile(cfg.DataPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", cfg.DataPath)
	}
	logger.Info("Read %d rows from %s — cleaning...", len(raw), cfg.DataPath)

	listings := services.NewCleaner(logger).Clean(raw)
	if len(listings) == 0 {
		return nil, errors.Errorf("all %d rows of %s were dropped during cleaning", len(raw), cfg.DataPath)
	}
	logger.Info("Cleaned dataset: %d listings", len(listings))

	if driver == "" {
		return listings, nil
	}

	store, err := storage.NewSQLStore(ctx, driver, dsn, retry)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s store", cfg.SyncStore)
	}
	defer store.Close()

	if err := store.Write(listings); err != nil {
		return nil, errors.Wrapf(err, "sync listings to %s", cfg.SyncStore)
	}
	n, err := store.Count()
	if err != nil {
		return nil, errors.Wrap(err, "count synced listings")
	}
	logger.Info("Clean listings stored in %s (table: listings, %d rows)", cfg.SyncStore, n)
	return listings, nil
}

// connectCache returns nil when no Redis is configured or it does not answer.
func connectCache(ctx context.Context, cfg *config.Config, fingerprint string, logger *utils.Logger) *cache.RedisCache {
	if cfg.RedisAddr == "" {
		logger.Info("[cache] REDIS_ADDR not set, running without view cache")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	rc := cache.NewRedisCache(client, time.Duration(cfg.CacheTTLSeconds)*time.Second, fingerprint)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("[cache] Redis connection failed, continuing without cache: %v", err)
		rc.Close()
		return nil
	}
	logger.Info("[cache] Redis connected at %s", cfg.RedisAddr)
	return rc
}

// captureSnapshot serves the dashboard on a loopback port just long enough
// to screenshot it.
func captureSnapshot(ctx context.Context, app *server.App, cfg *config.Config, out string, logger *utils.Logger) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return errors.Wrap(err, "listen for snapshot")
	}

	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- app.Serve(serveCtx, ln) }()

	url := "http://" + ln.Addr().String() + "/"
	captureErr := snapshot.NewCapturer(cfg.ChromeBin, cfg.MaxRetries, logger).Capture(ctx, url, out)

	cancel()
	if err := <-done; err != nil {
		logger.Warn("[snapshot] server stopped with error: %v", err)
	}
	return errors.Wrap(captureErr, "capture snapshot")
}
