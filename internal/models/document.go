package models

import "time"

// Document представляет локальную копию документа на клиенте.
// Инвариант: LocalVersion >= ServerVersion. LocalVersion увеличивается
// ровно на единицу при каждом локально применённом изменении,
// ServerVersion продвигается только после подтверждённого pull/push.
type Document struct {
	LastModified  time.Time `json:"last_modified"`  // LastModified время последнего локального изменения
	ID            string    `json:"id"`             // ID уникальный идентификатор документа
	Content       string    `json:"content"`        // Content текущее локальное содержимое
	ServerVersion int64     `json:"server_version"` // ServerVersion последняя подтверждённая версия сервера
	LocalVersion  int64     `json:"local_version"`  // LocalVersion версия с учётом локальных правок
	SizeBytes     int64     `json:"size_bytes"`     // SizeBytes размер содержимого в байтах
	SyncPriority  int       `json:"sync_priority"`  // SyncPriority приоритет удержания в кеше (больше = важнее)
}

// Dirty сообщает, есть ли локальные правки, ещё не подтверждённые сервером.
func (d *Document) Dirty() bool {
	return d.LocalVersion > d.ServerVersion
}

// RecomputeSize пересчитывает SizeBytes по текущему содержимому.
func (d *Document) RecomputeSize() {
	d.SizeBytes = int64(len(d.Content))
}

// Clone создает глубокую копию документа.
func (d *Document) Clone() *Document {
	clone := *d
	return &clone
}
