// Package syncer оркестрирует циклы pull/merge/push между локальным
// кешем документов и сервером.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	httpapi "github.com/iudanet/docsync/internal/client/api"
	"github.com/iudanet/docsync/internal/client/cache"
	"github.com/iudanet/docsync/internal/client/doclock"
	"github.com/iudanet/docsync/internal/client/events"
	"github.com/iudanet/docsync/internal/client/netmon"
	"github.com/iudanet/docsync/internal/client/resolver"
	"github.com/iudanet/docsync/internal/client/storage"
	"github.com/iudanet/docsync/internal/models"
	"github.com/iudanet/docsync/pkg/api"
)

// ErrManualHold документ ждет ручного разрешения конфликта,
// автоматическая синхронизация для него остановлена.
var ErrManualHold = errors.New("document is held for manual conflict resolution")

// Config настройки координатора
type Config struct {
	// RequestTimeout ограничение каждого сетевого вызова pull/push
	RequestTimeout time.Duration
	// PollInterval период фонового таймера синхронизации
	PollInterval time.Duration
	// BackoffBase начальная задержка экспоненциального backoff
	BackoffBase time.Duration
	// BackoffCap максимальная задержка между повторами
	BackoffCap time.Duration
	// MaxFailures число подряд идущих сбоев до события needs-attention
	MaxFailures int
}

// DefaultConfig возвращает настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 15 * time.Second,
		PollInterval:   30 * time.Second,
		BackoffBase:    2 * time.Second,
		BackoffCap:     5 * time.Minute,
		MaxFailures:    5,
	}
}

// docState состояние синхронизации одного документа между сессиями
type docState struct {
	nextAttempt time.Time
	backoff     retry.Backoff
	state       State
	failures    int
	manualHold  bool
}

// Coordinator оркеструет синхронизацию документов.
// На документ одновременно идет не больше одной сессии (single-flight):
// запрос, пришедший во время активной сессии того же документа,
// сливается с ней, а не встает в очередь.
type Coordinator struct {
	apiClient   httpapi.ClientAPI
	cache       *cache.Cache
	changes     storage.ChangeLogStorage
	resolutions storage.ResolutionLogStorage
	resolver    *resolver.Resolver
	monitor     *netmon.Monitor
	bus         *events.Bus
	locks       *doclock.Locks
	logger      *slog.Logger
	cfg         Config
	deviceID    string
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
	docs     map[string]*docState
}

// New creates a new sync coordinator
func New(
	apiClient httpapi.ClientAPI,
	docCache *cache.Cache,
	changes storage.ChangeLogStorage,
	resolutions storage.ResolutionLogStorage,
	res *resolver.Resolver,
	monitor *netmon.Monitor,
	bus *events.Bus,
	locks *doclock.Locks,
	deviceID string,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		apiClient:   apiClient,
		cache:       docCache,
		changes:     changes,
		resolutions: resolutions,
		resolver:    res,
		monitor:     monitor,
		bus:         bus,
		locks:       locks,
		deviceID:    deviceID,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		inFlight:    make(map[string]bool),
		docs:        make(map[string]*docState),
	}
}

// Run запускает фоновый цикл координатора: подписывается на переходы
// состояния сети и периодический таймер. Переход в online синхронизирует
// все документы с непустой очередью; переход в offline отменяет идущие
// сессии, не трогая их очереди. Блокируется до отмены ctx.
//
// Сессии выполняются в отдельной горутине: цикл продолжает читать
// переходы состояния, и отмена по offline срабатывает во время идущей
// сессии, а не после нее. Наложившиеся проходы безопасны: single-flight
// сливает повторные запросы одного документа.
func (c *Coordinator) Run(ctx context.Context) error {
	stateCh := c.monitor.Subscribe()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	var cancelInFlight context.CancelFunc = func() {}
	defer func() { cancelInFlight() }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case state, ok := <-stateCh:
			if !ok {
				return nil
			}
			switch state {
			case netmon.StateOnline:
				cancelInFlight()
				syncCtx, cancel := context.WithCancel(ctx)
				cancelInFlight = cancel
				// Переход в online - сильный сигнал: backoff не учитывается
				go c.syncEligible(syncCtx, true)
			case netmon.StateOffline:
				// Отмененная сессия оставляет очередь нетронутой
				cancelInFlight()
				cancelInFlight = func() {}
			}

		case <-ticker.C:
			if !c.monitor.Online() {
				continue
			}
			// Предыдущий контекст отменяется до замены: его сессии
			// уже завершились или слились бы с новыми по single-flight
			cancelInFlight()
			syncCtx, cancel := context.WithCancel(ctx)
			cancelInFlight = cancel
			go c.syncEligible(syncCtx, false)
		}
	}
}

// SyncAll синхронизирует все документы с непустой очередью.
// Сбой одного документа не блокирует остальные.
func (c *Coordinator) SyncAll(ctx context.Context) []*Session {
	return c.syncEligible(ctx, true)
}

// syncEligible синхронизирует документы с непустой очередью.
// При force=false документы, чей backoff еще не истек, пропускаются.
// Порядок обхода документов не специфицирован.
func (c *Coordinator) syncEligible(ctx context.Context, force bool) []*Session {
	ids, err := c.changes.DocumentsWithPending(ctx)
	if err != nil {
		c.logger.Error("failed to list documents with pending changes", "error", err)
		return nil
	}

	var sessions []*Session
	for _, id := range ids {
		if !force && !c.attemptDue(id) {
			continue
		}

		session, err := c.SyncDocument(ctx, id)
		if err != nil {
			c.logger.Warn("document sync failed",
				"document_id", id,
				"error", err)
		}
		if session != nil {
			sessions = append(sessions, session)
		}

		if ctx.Err() != nil {
			break
		}
	}

	return sessions
}

// SyncDocument выполняет один цикл pull/merge/push для документа.
// Возвращает (nil, nil), если сессия слилась с уже идущей.
func (c *Coordinator) SyncDocument(ctx context.Context, documentID string) (*Session, error) {
	// Single-flight: вторая сессия того же документа не начинается
	c.mu.Lock()
	if c.inFlight[documentID] {
		c.mu.Unlock()
		c.logger.Debug("sync request coalesced with in-flight session",
			"document_id", documentID)
		return nil, nil
	}
	st := c.stateLocked(documentID)
	if st.manualHold {
		c.mu.Unlock()
		return &Session{DocumentID: documentID, Outcome: OutcomeManual}, ErrManualHold
	}
	c.inFlight[documentID] = true
	st.state = StatePulling
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, documentID)
		c.mu.Unlock()
	}()

	session, err := c.runCycle(ctx, documentID)
	if err != nil {
		c.markFailed(ctx, documentID, err)
		return session, err
	}

	c.markSucceeded(documentID)
	return session, nil
}

// runCycle один проход машины состояний Pulling -> Merging -> Pushing
func (c *Coordinator) runCycle(ctx context.Context, documentID string) (*Session, error) {
	session := &Session{DocumentID: documentID, Outcome: OutcomeFailed}

	// Снимок локального состояния под эксклюзивной секцией документа.
	// Секция не держится через сетевые вызовы: правки, сделанные во время
	// синхронизации, попадают в очередь следующего цикла.
	c.locks.Lock(documentID)
	local, pending, err := c.snapshot(ctx, documentID)
	c.locks.Unlock(documentID)
	if err != nil {
		return session, err
	}

	// --- Pulling ---
	fetched, err := c.pull(ctx, documentID, local.ServerVersion)
	if err != nil {
		return session, err
	}
	session.Pulled = len(fetched.Changes)

	// Изменения, которые сервер уже применил - push с потерянным
	// подтверждением. Они подтверждаются архивом и исключаются из
	// воспроизведения: содержимое сервера их уже содержит, повторное
	// применение удвоило бы правку.
	pending, err = c.dropAcknowledged(ctx, documentID, fetched.Changes, pending)
	if err != nil {
		return session, err
	}

	// Идемпотентный no-op: версии совпадают, очередь пуста,
	// локальных правок нет - сеть больше не трогаем
	if fetched.Document.Version == local.ServerVersion && len(pending) == 0 && !local.Dirty() {
		c.setState(documentID, StateIdle)
		session.Outcome = OutcomeNoop
		return session, nil
	}

	// Чужие изменения сервера после общей базовой версии.
	// Свои и уже известные change_id отфильтровываются: изменение
	// никогда не применяется локально дважды, даже после re-pull.
	foreign, err := c.foreignChanges(ctx, documentID, fetched.Changes)
	if err != nil {
		return session, err
	}

	// Очередь пуста и правок нет - просто догоняем сервер.
	// Сюда же попадает повторный цикл после потерянного подтверждения:
	// вся очередь оказалась в архиве, содержимое уже совпадает с сервером,
	// и новый push только зря продвинул бы версию.
	if len(pending) == 0 && (!local.Dirty() || local.Content == fetched.Document.Content) {
		if err := c.fastForward(ctx, documentID, fetched); err != nil {
			return session, err
		}
		session.Outcome = OutcomeFastForward
		c.setState(documentID, StateIdle)
		return session, nil
	}

	// Очередь пуста, но содержимое правлено напрямую (ручное разрешение):
	// отправляем его как есть, без слияния
	if len(pending) == 0 {
		c.setState(documentID, StatePushing)

		resp, err := c.push(ctx, documentID, fetched.Document.Version, local.Content, nil)
		if err != nil {
			return session, err
		}
		if err := c.commit(ctx, documentID, local.Content, nil, resp.NewServerVersion); err != nil {
			return session, err
		}

		c.setState(documentID, StateIdle)
		session.Outcome = OutcomeSynced
		c.bus.Publish(events.SyncCompleted{
			DocumentID:    documentID,
			ServerVersion: resp.NewServerVersion,
			Pulled:        session.Pulled,
		})
		return session, nil
	}

	// --- Merging ---
	c.setState(documentID, StateMerging)

	merged, resolutions, err := c.merge(ctx, &fetched.Document, local, pending, foreign)
	if err != nil {
		if errors.Is(err, resolver.ErrManualResolution) {
			c.holdForManual(documentID)
			session.Outcome = OutcomeManual
		}
		return session, err
	}
	session.Conflicts = len(resolutions)

	// --- Pushing ---
	c.setState(documentID, StatePushing)

	resp, err := c.push(ctx, documentID, fetched.Document.Version, merged, pending)
	if err != nil {
		return session, err
	}
	session.Pushed = len(pending)

	// Только явное подтверждение сервера продвигает serverVersion,
	// архивирует и очищает очередь
	if err := c.commit(ctx, documentID, merged, pending, resp.NewServerVersion); err != nil {
		return session, err
	}

	c.setState(documentID, StateIdle)
	session.Outcome = OutcomeSynced

	c.bus.Publish(events.SyncCompleted{
		DocumentID:    documentID,
		ServerVersion: resp.NewServerVersion,
		Pushed:        session.Pushed,
		Pulled:        session.Pulled,
		Conflicts:     session.Conflicts,
	})

	return session, nil
}

// snapshot читает документ и его очередь. Документ, вытесненный из кеша,
// восстанавливается пустым с версией 0: pull и воспроизведение очереди
// вернут содержимое.
func (c *Coordinator) snapshot(ctx context.Context, documentID string) (*models.Document, []*models.LocalChange, error) {
	pending, err := c.changes.PendingChanges(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read change queue: %w", err)
	}

	local, ok := c.cache.Get(ctx, documentID)
	if !ok {
		local = &models.Document{
			ID:           documentID,
			LocalVersion: int64(len(pending)),
		}
	}

	return local, pending, nil
}

// pull загружает документ с сервера с ограничением по времени.
// Неизвестный серверу документ трактуется как пустой с версией 0.
func (c *Coordinator) pull(ctx context.Context, documentID string, since int64) (*api.FetchDocumentResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	fetched, err := c.apiClient.FetchDocument(reqCtx, documentID, since)
	if err != nil {
		if errors.Is(err, httpapi.ErrDocumentNotFound) {
			return &api.FetchDocumentResponse{
				Document: api.Document{ID: documentID},
			}, nil
		}
		return nil, fmt.Errorf("pull failed: %w", err)
	}

	return fetched, nil
}

// dropAcknowledged архивирует префикс очереди, уже применённый сервером,
// и возвращает остаток. Push отправляет очередь целиком и сервер применяет
// её атомарно, поэтому подтверждённая часть - всегда префикс: правки,
// записанные после утерянного подтверждения, идут строго следом.
func (c *Coordinator) dropAcknowledged(ctx context.Context, documentID string, serverChanges []api.Change, pending []*models.LocalChange) ([]*models.LocalChange, error) {
	if len(pending) == 0 || len(serverChanges) == 0 {
		return pending, nil
	}

	applied := make(map[string]struct{}, len(serverChanges))
	for i := range serverChanges {
		applied[serverChanges[i].ChangeID] = struct{}{}
	}

	acked := 0
	for _, ch := range pending {
		if _, ok := applied[ch.ChangeID]; !ok {
			break
		}
		acked++
	}
	if acked == 0 {
		return pending, nil
	}

	c.locks.Lock(documentID)
	defer c.locks.Unlock(documentID)

	upTo := pending[acked-1].ChangeID
	if err := c.changes.ArchivePending(ctx, documentID, upTo); err != nil {
		return nil, fmt.Errorf("failed to archive acknowledged changes: %w", err)
	}

	c.logger.Debug("acknowledged changes archived on pull",
		"document_id", documentID,
		"count", acked)

	return pending[acked:], nil
}

// foreignChanges отфильтровывает изменения этого устройства и уже
// известные локально change_id
func (c *Coordinator) foreignChanges(ctx context.Context, documentID string, serverChanges []api.Change) ([]*models.LocalChange, error) {
	var foreign []*models.LocalChange
	for i := range serverChanges {
		sc := &serverChanges[i]
		if sc.DeviceID == c.deviceID {
			continue
		}

		known, err := c.changes.HasChange(ctx, documentID, sc.ChangeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check change %s: %w", sc.ChangeID, err)
		}
		if known {
			continue
		}

		foreign = append(foreign, fromAPIChange(sc))
	}
	return foreign, nil
}

// fastForward замещает локальную копию серверной (очередь пуста, правок нет)
func (c *Coordinator) fastForward(ctx context.Context, documentID string, fetched *api.FetchDocumentResponse) error {
	c.locks.Lock(documentID)
	defer c.locks.Unlock(documentID)

	doc := &models.Document{
		ID:            documentID,
		Content:       fetched.Document.Content,
		ServerVersion: fetched.Document.Version,
		LocalVersion:  fetched.Document.Version,
		LastModified:  fetched.Document.UpdatedAt,
	}
	doc.RecomputeSize()

	if existing, ok := c.cache.Get(ctx, documentID); ok {
		doc.SyncPriority = existing.SyncPriority
	}

	if err := c.cache.Put(ctx, doc); err != nil {
		return fmt.Errorf("failed to store fast-forwarded document: %w", err)
	}

	return nil
}

// merge вызывает resolver и дописывает записи о разрешениях в журнал аудита.
// Записи пишутся и при manual-исходе: решение должно быть видно UI.
func (c *Coordinator) merge(
	ctx context.Context,
	serverDoc *api.Document,
	local *models.Document,
	pending, foreign []*models.LocalChange,
) (string, []*models.ConflictResolution, error) {
	server := &models.Document{
		ID:            serverDoc.ID,
		Content:       serverDoc.Content,
		ServerVersion: serverDoc.Version,
		LocalVersion:  serverDoc.Version,
	}

	result, resolveErr := c.resolver.Resolve(server, local, pending, foreign)

	for _, res := range result.Resolutions {
		if err := c.resolutions.AppendResolution(ctx, res); err != nil {
			return "", nil, fmt.Errorf("failed to append resolution record: %w", err)
		}
	}

	if resolveErr != nil {
		return "", result.Resolutions, resolveErr
	}

	return result.MergedContent, result.Resolutions, nil
}

// push отправляет смерженное содержимое и полную очередь на сервер
func (c *Coordinator) push(ctx context.Context, documentID string, baseVersion int64, merged string, pending []*models.LocalChange) (*api.PushResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req := api.PushRequest{
		DeviceID:      c.deviceID,
		BaseVersion:   baseVersion,
		MergedContent: merged,
		Changes:       make([]api.Change, 0, len(pending)),
	}
	for _, ch := range pending {
		req.Changes = append(req.Changes, toAPIChange(ch))
	}

	resp, err := c.apiClient.PushChanges(reqCtx, documentID, req)
	if err != nil {
		return nil, fmt.Errorf("push failed: %w", err)
	}
	if !resp.Accepted {
		return nil, fmt.Errorf("push failed: server did not accept changes")
	}

	return resp, nil
}

// commit фиксирует подтвержденный сервером результат: продвигает версии,
// архивирует отправленную часть очереди и накатывает поверх смерженного
// содержимого правки, записанные во время push.
func (c *Coordinator) commit(ctx context.Context, documentID, merged string, pushed []*models.LocalChange, newServerVersion int64) error {
	c.locks.Lock(documentID)
	defer c.locks.Unlock(documentID)

	// Архив и очистка очереди атомарны и покрывают только то,
	// что реально ушло на сервер
	if len(pushed) > 0 {
		upTo := pushed[len(pushed)-1].ChangeID
		if err := c.changes.ArchivePending(ctx, documentID, upTo); err != nil {
			return fmt.Errorf("failed to archive acknowledged changes: %w", err)
		}
	}

	// Правки, записанные во время push, остаются в очереди
	// и накатываются поверх подтвержденного содержимого
	remaining, err := c.changes.PendingChanges(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to read remaining queue: %w", err)
	}

	content := merged
	for _, ch := range remaining {
		content = ch.Apply(content)
	}

	doc := &models.Document{
		ID:            documentID,
		Content:       content,
		ServerVersion: newServerVersion,
		LocalVersion:  newServerVersion + int64(len(remaining)),
		LastModified:  c.now(),
	}
	doc.RecomputeSize()

	if existing, ok := c.cache.Get(ctx, documentID); ok {
		doc.SyncPriority = existing.SyncPriority
	}

	if err := c.cache.Put(ctx, doc); err != nil {
		return fmt.Errorf("failed to store synced document: %w", err)
	}

	return nil
}

// ResolveManually записывает решение человека по структурному конфликту:
// выбранное содержимое становится локальным, вся очередь архивируется
// как поглощенная решением, блокировка синхронизации снимается.
func (c *Coordinator) ResolveManually(ctx context.Context, documentID, chosenContent string) error {
	c.locks.Lock(documentID)
	defer c.locks.Unlock(documentID)

	res := &models.ConflictResolution{
		ID:             uuid.New().String(),
		DocumentID:     documentID,
		Strategy:       models.StrategyManual,
		ResolvedBy:     "user",
		ResolvedAt:     c.now(),
		LocalCandidate: chosenContent,
	}
	if err := c.resolutions.AppendResolution(ctx, res); err != nil {
		return fmt.Errorf("failed to record manual resolution: %w", err)
	}

	pending, err := c.changes.PendingChanges(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to read change queue: %w", err)
	}
	if len(pending) > 0 {
		upTo := pending[len(pending)-1].ChangeID
		if err := c.changes.ArchivePending(ctx, documentID, upTo); err != nil {
			return fmt.Errorf("failed to archive resolved changes: %w", err)
		}
	}

	doc, ok := c.cache.Get(ctx, documentID)
	if !ok {
		doc = &models.Document{ID: documentID}
	}
	doc.Content = chosenContent
	doc.LocalVersion++
	doc.LastModified = c.now()
	doc.RecomputeSize()

	if err := c.cache.Put(ctx, doc); err != nil {
		return fmt.Errorf("failed to store resolved document: %w", err)
	}

	c.mu.Lock()
	st := c.stateLocked(documentID)
	st.manualHold = false
	st.failures = 0
	st.backoff = nil
	st.nextAttempt = time.Time{}
	st.state = StateIdle
	c.mu.Unlock()

	return nil
}

// DocumentState возвращает текущее состояние машины и число подряд
// идущих сбоев для документа
func (c *Coordinator) DocumentState(documentID string) (State, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stateLocked(documentID)
	return st.state, st.failures
}

// attemptDue сообщает, истек ли backoff документа
func (c *Coordinator) attemptDue(documentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stateLocked(documentID)
	if st.manualHold {
		return false
	}
	return !c.now().Before(st.nextAttempt)
}

// markFailed переводит документ в Failed: очередь и serverVersion
// не тронуты, следующая попытка отложена экспоненциальным backoff
// с верхней границей
func (c *Coordinator) markFailed(ctx context.Context, documentID string, cause error) {
	c.mu.Lock()
	st := c.stateLocked(documentID)
	st.state = StateFailed
	st.failures++

	if st.backoff == nil {
		st.backoff = retry.WithCappedDuration(c.cfg.BackoffCap, retry.NewExponential(c.cfg.BackoffBase))
	}
	if delay, stop := st.backoff.Next(); !stop {
		st.nextAttempt = c.now().Add(delay)
	}

	failures := st.failures

	// Отвергнутые сервером изменения не повторяются молча:
	// документ ждет ручного вмешательства
	if httpapi.IsServerRejected(cause) {
		st.manualHold = true
	}
	manual := st.manualHold
	c.mu.Unlock()

	c.logger.Warn("sync failed",
		"document_id", documentID,
		"failures", failures,
		"error", cause)

	c.bus.Publish(events.SyncFailed{
		DocumentID: documentID,
		Reason:     cause.Error(),
		Attempts:   failures,
	})

	// После N подряд сбоев документ объявляется требующим внимания
	if manual || failures >= c.cfg.MaxFailures {
		c.bus.Publish(events.NeedsAttention{
			DocumentID: documentID,
			Reason:     cause.Error(),
			Failures:   failures,
		})
	}
}

// markSucceeded сбрасывает счетчик сбоев и backoff документа
func (c *Coordinator) markSucceeded(documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stateLocked(documentID)
	st.state = StateIdle
	st.failures = 0
	st.backoff = nil
	st.nextAttempt = time.Time{}
}

// holdForManual останавливает автоматическую синхронизацию документа
// до записи ручного решения
func (c *Coordinator) holdForManual(documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stateLocked(documentID)
	st.manualHold = true
	st.state = StateFailed
}

// setState выставляет состояние машины документа
func (c *Coordinator) setState(documentID string, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stateLocked(documentID).state = state
}

// stateLocked возвращает состояние документа, создавая его при первом
// обращении. Вызывается только под c.mu.
func (c *Coordinator) stateLocked(documentID string) *docState {
	st, ok := c.docs[documentID]
	if !ok {
		st = &docState{state: StateIdle}
		c.docs[documentID] = st
	}
	return st
}

// toAPIChange конвертирует локальное изменение в wire-формат
func toAPIChange(ch *models.LocalChange) api.Change {
	return api.Change{
		ChangeID:   ch.ChangeID,
		DocumentID: ch.DocumentID,
		DeviceID:   ch.DeviceID,
		Type:       string(ch.Type),
		Position:   ch.Position,
		Span:       ch.Span,
		Content:    ch.Content,
		Timestamp:  ch.Timestamp,
	}
}

// fromAPIChange конвертирует wire-формат в локальное изменение
func fromAPIChange(ch *api.Change) *models.LocalChange {
	return &models.LocalChange{
		ChangeID:   ch.ChangeID,
		DocumentID: ch.DocumentID,
		DeviceID:   ch.DeviceID,
		Type:       models.ChangeType(ch.Type),
		Position:   ch.Position,
		Span:       ch.Span,
		Content:    ch.Content,
		Timestamp:  ch.Timestamp,
	}
}
