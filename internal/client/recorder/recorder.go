// Package recorder захватывает локальные правки как упорядоченные
// иммутабельные записи и немедленно применяет их к локальному документу.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/docsync/internal/client/cache"
	"github.com/iudanet/docsync/internal/client/doclock"
	"github.com/iudanet/docsync/internal/client/events"
	"github.com/iudanet/docsync/internal/client/netmon"
	"github.com/iudanet/docsync/internal/client/storage"
	"github.com/iudanet/docsync/internal/clock"
	"github.com/iudanet/docsync/internal/models"
	"github.com/iudanet/docsync/internal/validation"
)

// Recorder записывает локальные изменения документов.
// Правка видна локально сразу, без ожидания сети: содержимое документа
// обновляется синхронно, изменение встает в очередь на синхронизацию.
type Recorder struct {
	cache    *cache.Cache
	changes  storage.ChangeLogStorage
	metadata storage.MetadataStorage
	clock    *clock.Clock
	monitor  *netmon.Monitor
	bus      *events.Bus
	locks    *doclock.Locks
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a new change recorder
func New(
	docCache *cache.Cache,
	changes storage.ChangeLogStorage,
	metadata storage.MetadataStorage,
	changeClock *clock.Clock,
	monitor *netmon.Monitor,
	bus *events.Bus,
	locks *doclock.Locks,
	logger *slog.Logger,
) *Recorder {
	return &Recorder{
		cache:    docCache,
		changes:  changes,
		metadata: metadata,
		clock:    changeClock,
		monitor:  monitor,
		bus:      bus,
		locks:    locks,
		logger:   logger,
		now:      time.Now,
	}
}

// RecordChange записывает одно локальное изменение документа.
//
// Последовательность:
//  1. изменению присваивается строго возрастающий в рамках документа
//     ChangeID, штампуются deviceID и wall-clock timestamp;
//  2. изменение встает в очередь документа (durable, порядок воспроизведения);
//  3. изменение применяется к локальному содержимому, localVersion
//     увеличивается ровно на единицу, размер пересчитывается;
//  4. документ персистится через кеш; вытеснение, вызванное этой записью,
//     не трогает сам отредактированный документ.
func (r *Recorder) RecordChange(ctx context.Context, documentID string, in validation.ChangeInput) (*models.LocalChange, error) {
	if err := validation.ValidateDocumentID(documentID); err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}
	if err := validation.ValidateChange(in); err != nil {
		return nil, fmt.Errorf("invalid change: %w", err)
	}

	r.locks.Lock(documentID)
	defer r.locks.Unlock(documentID)

	doc, ok := r.cache.Get(ctx, documentID)
	if !ok {
		// Первая правка неизвестного документа создает пустую локальную копию
		doc = &models.Document{
			ID:           documentID,
			LastModified: r.now(),
		}
	}

	// Выдаем номер изменения и сразу персистим счетчик:
	// после рестарта уже использованный номер не должен выдаться повторно
	seq := r.clock.Tick()
	if err := r.metadata.SaveClock(ctx, seq); err != nil {
		return nil, fmt.Errorf("failed to persist change clock: %w", err)
	}

	change := &models.LocalChange{
		ChangeID:   models.FormatChangeID(seq, r.clock.DeviceID()),
		DocumentID: documentID,
		DeviceID:   r.clock.DeviceID(),
		Type:       in.Type,
		Position:   in.Position,
		Span:       in.Span,
		Content:    in.Content,
		Timestamp:  r.now(),
	}

	// Сначала очередь, потом документ: падение между шагами оставляет
	// изменение в очереди, и воспроизведение при синхронизации его доиграет
	if err := r.changes.AppendChange(ctx, change); err != nil {
		return nil, fmt.Errorf("failed to queue change: %w", err)
	}

	doc.Content = change.Apply(doc.Content)
	doc.LocalVersion++
	doc.LastModified = change.Timestamp
	doc.RecomputeSize()

	if err := r.cache.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist document: %w", err)
	}

	r.logger.Debug("change recorded",
		"document_id", documentID,
		"change_id", change.ChangeID,
		"type", string(change.Type),
		"local_version", doc.LocalVersion)

	r.bus.Publish(events.ChangeApplied{
		DocumentID:   documentID,
		ChangeID:     change.ChangeID,
		LocalVersion: doc.LocalVersion,
	})

	if !r.monitor.Online() {
		pending, err := r.changes.PendingCount(ctx, documentID)
		if err != nil {
			pending = 0
		}
		r.bus.Publish(events.OfflineEnabled{
			DocumentID:     documentID,
			PendingChanges: pending,
		})
	}

	return change, nil
}
