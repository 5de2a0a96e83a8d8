package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"dryckeslager/internal/api"
	"dryckeslager/internal/config"
	"dryckeslager/internal/database"
	"dryckeslager/internal/inventory"
	"dryckeslager/internal/models"
	"dryckeslager/internal/monitoring"
	"dryckeslager/internal/settings"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *metricsPort != 0 {
		cfg.MetricsPort = *metricsPort
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level %q: %v", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	metrics := monitoring.NewCollector()
	persister := &countingPersister{store: db, metrics: metrics}

	settingsStore, inventoryStore, err := hydrateStores(db, persister, metrics, log)
	if err != nil {
		log.Fatalf("Failed to hydrate stores: %v", err)
	}

	server := api.NewServer(inventoryStore, settingsStore, metrics, cfg.AuthSecret, log)

	hub := server.Hub()
	inventoryStore.OnAction(func(action models.InventoryAction) {
		hub.Broadcast(action)
		refreshGauges(inventoryStore, metrics)
	})
	refreshGauges(inventoryStore, metrics)

	// Start metrics server
	go startMetricsServer(cfg.MetricsPort, metrics, log)

	// Keep the stock gauges current for mutations that emit no action
	go func() {
		for range time.Tick(time.Minute) {
			refreshGauges(inventoryStore, metrics)
		}
	}()

	// Start API server
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("API server shutdown error: %v", err)
		}
	}()

	log.Infof("Starting API server on port %d", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

// hydrateStores reads both persisted snapshots and builds the two stores,
// wiring the inventory store's threshold reads to the settings store.
func hydrateStores(db *database.Store, persister inventory.Persister, metrics *monitoring.Collector, log *logrus.Logger) (*settings.Store, *inventory.Store, error) {
	settingsState := models.DefaultSettings()
	if _, err := db.Load(database.SettingsKey, &settingsState); err != nil {
		return nil, nil, err
	}

	var inventoryState inventory.State
	if _, err := db.Load(database.InventoryKey, &inventoryState); err != nil {
		return nil, nil, err
	}

	settingsStore := settings.NewStore(settingsState, persister, hostColorScheme, log)
	inventoryStore := inventory.NewStore(inventoryState, settingsStore, persister, log)
	return settingsStore, inventoryStore, nil
}

// hostColorScheme resolves the host's color scheme preference. Headless
// deployments signal it through the environment; the default is light.
func hostColorScheme() models.ThemeMode {
	if os.Getenv("DRYCKESLAGER_COLOR_SCHEME") == "dark" {
		return models.ThemeDark
	}
	return models.ThemeLight
}

func refreshGauges(store *inventory.Store, metrics *monitoring.Collector) {
	metrics.SetStockGauges(len(store.Beverages()), len(store.OutOfStockBeverages()))
}

func startMetricsServer(port int, metrics *monitoring.Collector, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	log.Infof("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Errorf("Metrics server error: %v", err)
	}
}

// countingPersister wraps the snapshot store so that failed durable writes
// show up in the metrics. The error still reaches the calling store, which
// logs it; in-memory state remains the source of truth either way.
type countingPersister struct {
	store   *database.Store
	metrics *monitoring.Collector
}

func (p *countingPersister) Save(key string, state interface{}) error {
	if err := p.store.Save(key, state); err != nil {
		p.metrics.RecordSnapshotFailure()
		return err
	}
	return nil
}
