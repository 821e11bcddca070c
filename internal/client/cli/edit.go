package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iudanet/docsync/internal/models"
	"github.com/iudanet/docsync/internal/validation"
)

// RunInit создает документ: содержимое берется из файла или stdin.
// Создание оформляется как insert-изменение с позиции 0, поэтому новый
// документ попадает в очередь и будет отправлен на сервер при синхронизации.
func (a *App) RunInit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing document id. Usage: docsync init <doc-id> [file]")
	}
	documentID := args[0]

	if _, ok := a.cache.Get(ctx, documentID); ok {
		return fmt.Errorf("document %q already exists", documentID)
	}

	var content string
	if len(args) > 1 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		content = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	}

	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("document content is empty")
	}

	change, err := a.recorder.RecordChange(ctx, documentID, validation.ChangeInput{
		Type:     models.ChangeInsert,
		Position: 0,
		Content:  content,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created document %q (%d bytes)\n", documentID, len(content))
	fmt.Printf("Change %s queued for sync\n", change.ChangeID)
	return nil
}

// RunEdit записывает одно изменение документа
func (a *App) RunEdit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing arguments. Usage: docsync edit <doc-id> <insert|delete|format|comment> ...")
	}
	documentID := args[0]
	changeType := args[1]
	rest := args[2:]

	input, err := parseEditArgs(changeType, rest)
	if err != nil {
		return err
	}

	change, err := a.recorder.RecordChange(ctx, documentID, input)
	if err != nil {
		return err
	}

	doc, _ := a.cache.Get(ctx, documentID)
	fmt.Printf("Applied %s to %q\n", change.Type, documentID)
	fmt.Printf("Change ID:     %s\n", change.ChangeID)
	if doc != nil {
		fmt.Printf("Local version: %d\n", doc.LocalVersion)
	}
	if !a.monitor.Online() {
		fmt.Println("Offline: change queued, will sync when connection returns")
	}
	return nil
}

func parseEditArgs(changeType string, args []string) (validation.ChangeInput, error) {
	var in validation.ChangeInput

	switch changeType {
	case "insert":
		if len(args) < 2 {
			return in, fmt.Errorf("usage: edit <doc-id> insert <pos> <text>")
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return in, fmt.Errorf("invalid position %q", args[0])
		}
		in = validation.ChangeInput{
			Type:     models.ChangeInsert,
			Position: pos,
			Content:  strings.Join(args[1:], " "),
		}

	case "delete":
		if len(args) < 2 {
			return in, fmt.Errorf("usage: edit <doc-id> delete <pos> <span>")
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return in, fmt.Errorf("invalid position %q", args[0])
		}
		span, err := strconv.Atoi(args[1])
		if err != nil {
			return in, fmt.Errorf("invalid span %q", args[1])
		}
		in = validation.ChangeInput{
			Type:     models.ChangeDelete,
			Position: pos,
			Span:     span,
		}

	case "format":
		if len(args) < 3 {
			return in, fmt.Errorf("usage: edit <doc-id> format <pos> <span> <style>")
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return in, fmt.Errorf("invalid position %q", args[0])
		}
		span, err := strconv.Atoi(args[1])
		if err != nil {
			return in, fmt.Errorf("invalid span %q", args[1])
		}
		in = validation.ChangeInput{
			Type:     models.ChangeFormat,
			Position: pos,
			Span:     span,
			Content:  args[2],
		}

	case "comment":
		if len(args) < 2 {
			return in, fmt.Errorf("usage: edit <doc-id> comment <pos> <text>")
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return in, fmt.Errorf("invalid position %q", args[0])
		}
		in = validation.ChangeInput{
			Type:     models.ChangeComment,
			Position: pos,
			Content:  strings.Join(args[1:], " "),
		}

	default:
		return in, fmt.Errorf("unknown change type: %s. Use: insert, delete, format, or comment", changeType)
	}

	return in, nil
}
