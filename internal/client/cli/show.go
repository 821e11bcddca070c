package cli

import (
	"context"
	"fmt"
	"sort"
)

// RunCat печатает содержимое документа и его версии
func (a *App) RunCat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing document id. Usage: docsync cat <doc-id>")
	}
	documentID := args[0]

	doc, ok := a.cache.Get(ctx, documentID)
	if !ok {
		return fmt.Errorf("document %q is not cached locally. Use 'docsync sync %s' to fetch it", documentID, documentID)
	}

	pending, err := a.store.PendingCount(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to count pending changes: %w", err)
	}

	fmt.Printf("=== %s ===\n", doc.ID)
	fmt.Printf("Server version: %d\n", doc.ServerVersion)
	fmt.Printf("Local version:  %d\n", doc.LocalVersion)
	fmt.Printf("Size:           %d bytes\n", doc.SizeBytes)
	fmt.Printf("Pending:        %d change(s)\n", pending)
	fmt.Println()
	fmt.Println(doc.Content)
	return nil
}

// RunList выводит список всех документов локального кеша
func (a *App) RunList(ctx context.Context) error {
	docs, err := a.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("No documents cached.")
		fmt.Println()
		fmt.Println("Use 'docsync init <doc-id>' to create one or 'docsync sync <doc-id>' to fetch one.")
		return nil
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	fmt.Printf("Found %d document(s):\n", len(docs))
	fmt.Println()
	for _, doc := range docs {
		pending, err := a.store.PendingCount(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to count pending changes: %w", err)
		}

		marker := " "
		if pending > 0 {
			marker = "*"
		}
		fmt.Printf("%s %-24s v%d/%d  %6d bytes  priority %d  pending %d\n",
			marker, doc.ID, doc.ServerVersion, doc.LocalVersion,
			doc.SizeBytes, doc.SyncPriority, pending)
	}
	fmt.Println()
	fmt.Println("* = has unsynced local changes")
	return nil
}

// RunQueue показывает очередь неотправленных изменений документа
func (a *App) RunQueue(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing document id. Usage: docsync queue <doc-id>")
	}
	documentID := args[0]

	changes, err := a.store.PendingChanges(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to read queue: %w", err)
	}

	if len(changes) == 0 {
		fmt.Printf("Queue of %q is empty.\n", documentID)
		return nil
	}

	fmt.Printf("Pending changes of %q (%d):\n", documentID, len(changes))
	fmt.Println()
	for i, change := range changes {
		fmt.Printf("%d. %s  %s\n", i+1, change.ChangeID, change.Type)
		fmt.Printf("   Position: %d", change.Position)
		if change.Span > 0 {
			fmt.Printf("  Span: %d", change.Span)
		}
		fmt.Println()
		if change.Content != "" {
			fmt.Printf("   Content:  %.60q\n", change.Content)
		}
		fmt.Printf("   Recorded: %s\n", change.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
	return nil
}

// RunStatus печатает состояние кеша и суммарные очереди
func (a *App) RunStatus(ctx context.Context) error {
	used, budget := a.cache.Usage()

	dirty, err := a.store.DocumentsWithPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending documents: %w", err)
	}

	total := 0
	for _, id := range dirty {
		n, err := a.store.PendingCount(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count pending changes: %w", err)
		}
		total += n
	}

	fmt.Println("=== DocSync Status ===")
	fmt.Println()
	fmt.Printf("Device ID:    %s\n", a.deviceID)
	fmt.Printf("Server:       %s\n", a.serverURL)
	fmt.Printf("Network:      %s\n", a.monitor.State())
	fmt.Printf("Cache:        %d / %d bytes (%d document(s))\n", used, budget, a.cache.Len())
	fmt.Printf("Unsynced:     %d change(s) across %d document(s)\n", total, len(dirty))

	if len(dirty) > 0 {
		fmt.Println()
		fmt.Println("Documents with pending changes:")
		sort.Strings(dirty)
		for _, id := range dirty {
			state, failures := a.coordinator.DocumentState(id)
			fmt.Printf("  %-24s state %s", id, state)
			if failures > 0 {
				fmt.Printf("  failures %d", failures)
			}
			fmt.Println()
		}
	}
	return nil
}
