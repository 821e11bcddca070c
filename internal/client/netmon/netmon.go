// Package netmon отслеживает состояние подключения клиента.
package netmon

import (
	"log/slog"
	"sync"
)

// State состояние сети клиента
type State string

const (
	// StateOnline сеть доступна
	StateOnline State = "online"
	// StateOffline сеть недоступна
	StateOffline State = "offline"
)

// Monitor хранит единственное авторитетное состояние сети клиента
// и рассылает переходы подписчикам. Monitor только испускает события,
// никакой блокирующий вызов на нем не ждет.
type Monitor struct {
	logger *slog.Logger
	state  State
	subs   []chan State
	mu     sync.Mutex
}

// New creates a new network monitor. Начальное состояние - offline:
// движок считает сеть недоступной, пока коллаборатор не сообщит обратное.
func New(logger *slog.Logger) *Monitor {
	return &Monitor{
		logger: logger,
		state:  StateOffline,
	}
}

// State returns the current network state
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Online reports whether the client is currently online
func (m *Monitor) Online() bool {
	return m.State() == StateOnline
}

// SetState устанавливает новое состояние сети.
// Рассылает событие подписчикам только при фактическом переходе,
// доставка неблокирующая.
func (m *Monitor) SetState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == state {
		return
	}

	m.state = state
	m.logger.Info("network state changed", "state", string(state))

	for _, ch := range m.subs {
		select {
		case ch <- state:
		default:
			m.logger.Warn("network state subscriber is slow, dropping transition",
				"state", string(state))
		}
	}
}

// Subscribe возвращает канал переходов состояния сети
func (m *Monitor) Subscribe() <-chan State {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan State, 8)
	m.subs = append(m.subs, ch)
	return ch
}

// Close закрывает каналы всех подписчиков
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}
