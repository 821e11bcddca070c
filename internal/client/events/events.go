// Package events содержит типизированную шину событий движка синхронизации.
// Каждое событие несет конкретный вариант payload вместо нетипизированной map,
// подписчики делают исчерпывающий switch по типу.
package events

import (
	"log/slog"
	"sync"
)

// Kind вид события движка
type Kind int

// Виды событий, видимых внешнему UI-коллаборатору
const (
	KindChangeApplied Kind = iota // локальная правка применена
	KindSyncCompleted             // цикл синхронизации документа завершился успехом
	KindSyncFailed                // цикл синхронизации документа завершился ошибкой
	KindOfflineEnabled            // правка записана в offline-очередь
	KindNeedsAttention            // документ требует вмешательства человека
)

// String возвращает имя вида события
func (k Kind) String() string {
	switch k {
	case KindChangeApplied:
		return "change-applied"
	case KindSyncCompleted:
		return "sync-completed"
	case KindSyncFailed:
		return "sync-failed"
	case KindOfflineEnabled:
		return "offline-enabled"
	case KindNeedsAttention:
		return "needs-attention"
	}
	return "unknown"
}

// Payload запечатанный интерфейс вариантов события
type Payload interface {
	Kind() Kind
}

// ChangeApplied локальная правка применена к документу
type ChangeApplied struct {
	DocumentID   string
	ChangeID     string
	LocalVersion int64
}

// Kind implements Payload
func (ChangeApplied) Kind() Kind { return KindChangeApplied }

// SyncCompleted документ успешно синхронизирован с сервером
type SyncCompleted struct {
	DocumentID    string
	ServerVersion int64
	Pushed        int
	Pulled        int
	Conflicts     int
}

// Kind implements Payload
func (SyncCompleted) Kind() Kind { return KindSyncCompleted }

// SyncFailed синхронизация документа не удалась, очередь сохранена
type SyncFailed struct {
	DocumentID string
	Reason     string
	Attempts   int
}

// Kind implements Payload
func (SyncFailed) Kind() Kind { return KindSyncFailed }

// OfflineEnabled правка записана в очередь при отсутствии сети
type OfflineEnabled struct {
	DocumentID     string
	PendingChanges int
}

// Kind implements Payload
func (OfflineEnabled) Kind() Kind { return KindOfflineEnabled }

// NeedsAttention документ в состоянии, требующем вмешательства:
// исчерпан бюджет повторов или нужен ручной выбор версии
type NeedsAttention struct {
	DocumentID string
	Reason     string
	Failures   int
}

// Kind implements Payload
func (NeedsAttention) Kind() Kind { return KindNeedsAttention }

// Bus шина событий с неблокирующей доставкой.
// Подписчик с заполненным каналом пропускает событие:
// движок никогда не ждет потребителей.
type Bus struct {
	logger *slog.Logger
	subs   []chan Payload
	mu     sync.Mutex
}

// NewBus creates a new event bus
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe возвращает канал событий для нового подписчика
func (b *Bus) Subscribe() <-chan Payload {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Payload, 64)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish рассылает событие всем подписчикам без блокировки
func (b *Bus) Publish(p Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- p:
		default:
			b.logger.Warn("event subscriber is slow, dropping event",
				"kind", p.Kind().String())
		}
	}
}

// Close закрывает каналы всех подписчиков
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
