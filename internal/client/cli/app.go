// Package cli реализует команды клиента docsync.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	httpapi "github.com/iudanet/docsync/internal/client/api"
	"github.com/iudanet/docsync/internal/client/cache"
	"github.com/iudanet/docsync/internal/client/doclock"
	"github.com/iudanet/docsync/internal/client/events"
	"github.com/iudanet/docsync/internal/client/netmon"
	"github.com/iudanet/docsync/internal/client/recorder"
	"github.com/iudanet/docsync/internal/client/resolver"
	"github.com/iudanet/docsync/internal/client/storage/boltdb"
	"github.com/iudanet/docsync/internal/client/syncer"
	"github.com/iudanet/docsync/internal/clock"
)

// App собирает все компоненты клиента для выполнения одной команды
type App struct {
	store       *boltdb.Storage
	apiClient   httpapi.ClientAPI
	cache       *cache.Cache
	recorder    *recorder.Recorder
	coordinator *syncer.Coordinator
	monitor     *netmon.Monitor
	bus         *events.Bus
	serverURL   string
	deviceID    string
	logger      *slog.Logger
}

// NewApp открывает локальное хранилище и собирает движок синхронизации.
// При первом запуске генерируется и персистится deviceID; счетчик
// изменений восстанавливается из metadata, чтобы после перезапуска
// не выдать уже использованный идентификатор.
func NewApp(ctx context.Context, serverURL, dbPath string, budgetBytes int64, logger *slog.Logger) (*App, error) {
	store, err := boltdb.New(ctx, dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	deviceID, err := store.GetDeviceID(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to read device id: %w", err)
	}
	if deviceID == "" {
		deviceID = clock.New().DeviceID()
		if err := store.SaveDeviceID(ctx, deviceID); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to persist device id: %w", err)
		}
	}

	changeClock := clock.NewWithDeviceID(deviceID)
	counter, err := store.GetClock(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to read change clock: %w", err)
	}
	changeClock.SetCounter(counter)

	docCache := cache.New(store, budgetBytes, logger)
	if err := docCache.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load document cache: %w", err)
	}

	monitor := netmon.New(logger)
	bus := events.NewBus(logger)
	locks := doclock.New()
	cfg := syncer.DefaultConfig()

	apiClient := httpapi.NewClient(serverURL, deviceID, cfg.RequestTimeout)

	rec := recorder.New(docCache, store, store, changeClock, monitor, bus, locks, logger)
	coordinator := syncer.New(apiClient, docCache, store, store,
		resolver.New(logger), monitor, bus, locks, deviceID, cfg, logger)

	return &App{
		store:       store,
		apiClient:   apiClient,
		cache:       docCache,
		recorder:    rec,
		coordinator: coordinator,
		monitor:     monitor,
		bus:         bus,
		serverURL:   serverURL,
		deviceID:    deviceID,
		logger:      logger,
	}, nil
}

// Close освобождает ресурсы приложения
func (a *App) Close() error {
	a.bus.Close()
	a.monitor.Close()
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
