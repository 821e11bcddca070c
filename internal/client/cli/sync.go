package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/iudanet/docsync/internal/client/netmon"
	"github.com/iudanet/docsync/internal/client/syncer"
)

// RunSync выполняет разовую синхронизацию: одного документа,
// если передан его идентификатор, иначе всех документов с непустой очередью
func (a *App) RunSync(ctx context.Context, args []string) error {
	if !a.probe(ctx) {
		a.monitor.SetState(netmon.StateOffline)
		return fmt.Errorf("server %s is unreachable, changes remain queued", a.serverURL)
	}
	a.monitor.SetState(netmon.StateOnline)

	if len(args) > 0 {
		session, err := a.coordinator.SyncDocument(ctx, args[0])
		if err != nil {
			if errors.Is(err, syncer.ErrManualHold) {
				return fmt.Errorf("document %q needs manual conflict resolution, run 'docsync resolve %s ...'", args[0], args[0])
			}
			return err
		}
		printSession(session)
		return nil
	}

	sessions := a.coordinator.SyncAll(ctx)
	if len(sessions) == 0 {
		fmt.Println("Nothing to sync: all queues are empty.")
		return nil
	}

	failed := 0
	for _, session := range sessions {
		printSession(session)
		if session != nil && (session.Outcome == syncer.OutcomeFailed || session.Outcome == syncer.OutcomeManual) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed to sync", failed)
	}
	return nil
}

// RunResolve разрешает конфликт, остановивший синхронизацию документа.
// Выбранная версия: локальная копия, серверная копия или содержимое файла.
func (a *App) RunResolve(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docsync resolve <doc-id> <local|server|file> [path]")
	}
	documentID := args[0]
	source := args[1]

	var content string
	switch source {
	case "local":
		doc, ok := a.cache.Get(ctx, documentID)
		if !ok {
			return fmt.Errorf("document %q is not cached locally", documentID)
		}
		content = doc.Content

	case "server":
		resp, err := a.apiClient.FetchDocument(ctx, documentID, 0)
		if err != nil {
			return fmt.Errorf("failed to fetch server copy: %w", err)
		}
		content = resp.Document.Content

	case "file":
		if len(args) < 3 {
			return fmt.Errorf("usage: docsync resolve <doc-id> file <path>")
		}
		data, err := os.ReadFile(args[2])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		content = string(data)

	default:
		return fmt.Errorf("unknown source: %s. Use: local, server, or file", source)
	}

	if err := a.coordinator.ResolveManually(ctx, documentID, content); err != nil {
		return err
	}

	fmt.Printf("Conflict of %q resolved with %s copy (%d bytes)\n", documentID, source, len(content))
	fmt.Println("Run 'docsync sync' to push the chosen version.")
	return nil
}

func printSession(session *syncer.Session) {
	if session == nil {
		fmt.Println("Sync already in progress for this document, request coalesced.")
		return
	}

	switch session.Outcome {
	case syncer.OutcomeNoop:
		fmt.Printf("%s: up to date\n", session.DocumentID)
	case syncer.OutcomeSynced:
		fmt.Printf("%s: synced (%d pushed, %d pulled, %d conflict(s) resolved)\n",
			session.DocumentID, session.Pushed, session.Pulled, session.Conflicts)
	case syncer.OutcomeFastForward:
		fmt.Printf("%s: fast-forwarded to server version (%d pulled)\n",
			session.DocumentID, session.Pulled)
	case syncer.OutcomeManual:
		fmt.Printf("%s: conflict needs manual resolution\n", session.DocumentID)
	case syncer.OutcomeFailed:
		fmt.Printf("%s: sync failed, queue preserved\n", session.DocumentID)
	case syncer.OutcomeCoalesced:
		fmt.Printf("%s: coalesced with running session\n", session.DocumentID)
	}
}
