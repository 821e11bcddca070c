// Package cache реализует ограниченный по размеру кеш документов
// со сквозной записью в durable storage и вытеснением по приоритету и LRU.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/docsync/internal/client/storage"
	"github.com/iudanet/docsync/internal/models"
)

// ErrCapacityExceeded возвращается, когда одна запись сама по себе
// превышает весь бюджет хранилища. Такая запись не кешируется.
var ErrCapacityExceeded = errors.New("entry exceeds storage budget")

// evictFactor задает гистерезис вытеснения: после превышения бюджета
// кеш вытесняет записи до 80% от максимума, а не ровно до границы,
// иначе повторные вставки у лимита вызывали бы вытеснение на каждый put.
const evictFactor = 0.8

// entry учетная запись кеша для одного документа
type entry struct {
	lastAccessed time.Time
	doc          *models.Document
	sizeBytes    int64
	priority     int
}

// Cache представляет кеш документов с бюджетом хранилища.
// Все записи синхронно пишутся в DocumentStorage: подтвержденная
// запись переживает падение процесса.
type Cache struct {
	store        storage.DocumentStorage
	logger       *slog.Logger
	entries      map[string]*entry
	now          func() time.Time
	maxSizeBytes int64
	totalBytes   int64
	mu           sync.Mutex
}

// New creates a new budgeted document cache
func New(store storage.DocumentStorage, maxSizeBytes int64, logger *slog.Logger) *Cache {
	return &Cache{
		store:        store,
		logger:       logger,
		entries:      make(map[string]*entry),
		now:          time.Now,
		maxSizeBytes: maxSizeBytes,
	}
}

// Load заполняет кеш из durable storage при старте движка.
// Повреждённые записи уже отфильтрованы уровнем хранилища (skip and log).
func (c *Cache) Load(ctx context.Context) error {
	docs, err := c.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range docs {
		c.entries[doc.ID] = &entry{
			doc:          doc,
			sizeBytes:    doc.SizeBytes,
			lastAccessed: c.now(),
			priority:     doc.SyncPriority,
		}
		c.totalBytes += doc.SizeBytes
	}

	c.logger.Info("cache loaded",
		"documents", len(c.entries),
		"total_bytes", c.totalBytes,
		"max_bytes", c.maxSizeBytes)

	// После загрузки бюджет тоже должен соблюдаться
	if c.totalBytes > c.maxSizeBytes {
		c.evictLocked(ctx, int64(float64(c.maxSizeBytes)*evictFactor), "")
	}

	return nil
}

// Put stores a document in the cache and writes it through to durable storage.
// Возвращает ErrCapacityExceeded только если одна запись больше всего бюджета;
// во всех остальных случаях put успешен и может вытеснить другие записи.
// Только что вставленный документ исключается из вызванного им прохода
// вытеснения, чтобы не отбросить только что сделанную правку.
func (c *Cache) Put(ctx context.Context, doc *models.Document) error {
	if doc.SizeBytes > c.maxSizeBytes {
		return fmt.Errorf("%w: document %s is %d bytes, budget is %d",
			ErrCapacityExceeded, doc.ID, doc.SizeBytes, c.maxSizeBytes)
	}

	// Сквозная запись до обновления учета в памяти
	if err := c.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist document: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[doc.ID]; ok {
		c.totalBytes -= existing.sizeBytes
	}

	c.entries[doc.ID] = &entry{
		doc:          doc.Clone(),
		sizeBytes:    doc.SizeBytes,
		lastAccessed: c.now(),
		priority:     doc.SyncPriority,
	}
	c.totalBytes += doc.SizeBytes

	if c.totalBytes > c.maxSizeBytes {
		c.evictLocked(ctx, int64(float64(c.maxSizeBytes)*evictFactor), doc.ID)
	}

	return nil
}

// Get returns a cached document and bumps its lastAccessed time.
// Обновление lastAccessed - наблюдаемый побочный эффект: именно он
// делает LRU-вытеснение осмысленным.
func (c *Cache) Get(ctx context.Context, id string) (*models.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}

	e.lastAccessed = c.now()
	return e.doc.Clone(), true
}

// Remove explicitly invalidates a cache entry and deletes it from storage
func (c *Cache) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil
	}

	if err := c.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	c.totalBytes -= e.sizeBytes
	delete(c.entries, id)

	return nil
}

// EvictUntilUnder evicts entries until totalBytes <= targetBytes
func (c *Cache) EvictUntilUnder(ctx context.Context, targetBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked(ctx, targetBytes, "")
}

// Usage returns current and maximum budget in bytes
func (c *Cache) Usage() (totalBytes, maxBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalBytes, c.maxSizeBytes
}

// Len returns the number of cached documents
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// evictLocked вытесняет записи по одной, пока totalBytes не опустится
// до targetBytes. Кандидаты ранжируются по возрастанию приоритета,
// при равном приоритете - по возрастанию lastAccessed (старые первыми).
// Вызывается только под c.mu.
func (c *Cache) evictLocked(ctx context.Context, targetBytes int64, exemptID string) {
	if c.totalBytes <= targetBytes {
		return
	}

	type candidate struct {
		id string
		e  *entry
	}

	candidates := make([]candidate, 0, len(c.entries))
	for id, e := range c.entries {
		if id == exemptID {
			continue
		}
		candidates = append(candidates, candidate{id: id, e: e})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].e.priority != candidates[j].e.priority {
			return candidates[i].e.priority < candidates[j].e.priority
		}
		return candidates[i].e.lastAccessed.Before(candidates[j].e.lastAccessed)
	})

	for _, cand := range candidates {
		if c.totalBytes <= targetBytes {
			break
		}

		if err := c.store.DeleteDocument(ctx, cand.id); err != nil {
			// Не смогли удалить из durable storage - запись остается учтенной
			c.logger.Warn("failed to evict document from storage",
				"document_id", cand.id,
				"error", err)
			continue
		}

		c.totalBytes -= cand.e.sizeBytes
		delete(c.entries, cand.id)

		c.logger.Debug("evicted document",
			"document_id", cand.id,
			"size_bytes", cand.e.sizeBytes,
			"total_bytes", c.totalBytes)
	}
}
