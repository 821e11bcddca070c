// Package doclock содержит эксклюзивные секции уровня документа.
// Очередь и запись документа мутируются в каждый момент ровно одним
// из {Change Recorder, Sync Coordinator}; блокировки разных документов
// независимы, синхронизация одного документа не тормозит правки других.
package doclock

import "sync"

// Locks выдает мьютекс на каждый идентификатор документа
type Locks struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

// New creates a new per-document lock set
func New() *Locks {
	return &Locks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock захватывает эксклюзивную секцию документа
func (l *Locks) Lock(documentID string) {
	l.get(documentID).Lock()
}

// Unlock освобождает эксклюзивную секцию документа
func (l *Locks) Unlock(documentID string) {
	l.get(documentID).Unlock()
}

func (l *Locks) get(documentID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[documentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[documentID] = m
	}
	return m
}
