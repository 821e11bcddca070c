package cli

import (
	"context"
	"fmt"
	"os"
)

// Run выполняет команду и возвращает ошибку для вывода в main
func (a *App) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "init":
		return a.RunInit(ctx, args)
	case "edit":
		return a.RunEdit(ctx, args)
	case "cat":
		return a.RunCat(ctx, args)
	case "list":
		return a.RunList(ctx)
	case "queue":
		return a.RunQueue(ctx, args)
	case "sync":
		return a.RunSync(ctx, args)
	case "resolve":
		return a.RunResolve(ctx, args)
	case "watch":
		return a.RunWatch(ctx)
	case "status":
		return a.RunStatus(ctx)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// PrintUsage выводит справку по командам
func PrintUsage() {
	fmt.Fprint(os.Stderr, `DocSync - offline-first document synchronization client

Usage:
  docsync [flags] <command> [arguments]

Commands:
  init <doc-id> [file]                     Create a document (content from file or stdin)
  edit <doc-id> insert <pos> <text>        Insert text at position
  edit <doc-id> delete <pos> <span>        Delete span characters at position
  edit <doc-id> format <pos> <span> <style>  Apply a formatting style to a range
  edit <doc-id> comment <pos> <text>       Attach a comment at position
  cat <doc-id>                             Print document content and versions
  list                                     List cached documents
  queue <doc-id>                           Show pending changes of a document
  sync [doc-id]                            Synchronize one document or all queues
  resolve <doc-id> <local|server|file> [path]  Resolve a held conflict
  watch                                    Run the background sync loop
  status                                   Show cache usage and queue totals

Flags:
  -server string   Server URL (default "http://localhost:8080")
  -db string       Path to local database (default "docsync-client.db")
  -budget int      Cache budget in bytes (default 10485760)
  -version         Show version information
`)
}
