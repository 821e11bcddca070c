package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iudanet/docsync/internal/client/events"
	"github.com/iudanet/docsync/internal/client/netmon"
)

const probeInterval = 10 * time.Second

// RunWatch запускает фоновый цикл синхронизации: периодический probe
// сервера питает network monitor, координатор реагирует на переходы
// online/offline и таймер. Блокируется до отмены ctx (Ctrl+C).
func (a *App) RunWatch(ctx context.Context) error {
	fmt.Printf("Watching for changes (device %s, server %s). Press Ctrl+C to stop.\n",
		a.deviceID, a.serverURL)

	eventCh := a.bus.Subscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-eventCh:
				if !ok {
					return
				}
				printEvent(p)
			}
		}
	}()

	go a.probeLoop(ctx)

	if err := a.coordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// probeLoop периодически проверяет доступность сервера и транслирует
// результат в network monitor. Первый probe выполняется сразу.
func (a *App) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		if a.probe(ctx) {
			a.monitor.SetState(netmon.StateOnline)
		} else {
			a.monitor.SetState(netmon.StateOffline)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// probe делает один запрос к health endpoint сервера
func (a *App) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, a.serverURL+"/api/v1/health", nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

func printEvent(p events.Payload) {
	switch e := p.(type) {
	case events.ChangeApplied:
		fmt.Printf("[%s] %s: change %s applied (local v%d)\n",
			p.Kind(), e.DocumentID, e.ChangeID, e.LocalVersion)
	case events.SyncCompleted:
		fmt.Printf("[%s] %s: server v%d (%d pushed, %d pulled, %d conflict(s))\n",
			p.Kind(), e.DocumentID, e.ServerVersion, e.Pushed, e.Pulled, e.Conflicts)
	case events.SyncFailed:
		fmt.Printf("[%s] %s: %s (attempt %d)\n",
			p.Kind(), e.DocumentID, e.Reason, e.Attempts)
	case events.OfflineEnabled:
		fmt.Printf("[%s] %s: %d change(s) queued offline\n",
			p.Kind(), e.DocumentID, e.PendingChanges)
	case events.NeedsAttention:
		fmt.Printf("[%s] %s: %s\n", p.Kind(), e.DocumentID, e.Reason)
	}
}
