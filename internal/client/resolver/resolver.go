// Package resolver детерминированно сливает расходящиеся состояния
// локального документа и документа сервера.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/docsync/internal/models"
)

// ErrManualResolution сигнализирует структурный конфликт, который движок
// не разрешает сам: обе стороны переформатировали один диапазон по-разному.
// Синхронизация документа останавливается до решения человека.
var ErrManualResolution = errors.New("structural conflict requires manual resolution")

// Result результат слияния состояний документа
type Result struct {
	MergedContent string                       // итоговое содержимое
	Resolutions   []*models.ConflictResolution // записи о разрешённых конфликтах
	Applied       int                          // изменения, вошедшие в слияние (включая суженные)
	Dropped       int                          // изменения, отброшенные правилами слияния
}

// Resolver сливает очередь локальных изменений с изменениями сервера.
// Resolve - чистая функция своих входов: одинаковые (server, local, pending,
// serverChanges) всегда дают одинаковый MergedContent и те же решения.
type Resolver struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a new conflict resolver
func New(logger *slog.Logger) *Resolver {
	return &Resolver{
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Resolve сливает очередь локальных изменений с содержимым сервера.
// serverChanges - чужие изменения, применённые сервером после последней
// общей serverVersion (их передает координатор после pull).
//
// Правила:
//   - непересекающиеся изменения применяются в порядке ChangeID
//     с детерминированным сдвигом позиций, без записей о конфликте;
//   - insert против insert в одной позиции упорядочиваются по
//     (timestamp, deviceID), стратегия merge;
//   - delete против insert/format: delete побеждает только при более
//     позднем timestamp, иначе сужается до непересекающегося остатка,
//     стратегия merge;
//   - format против format на одном диапазоне с разными стилями -
//     стратегия manual, возвращается ErrManualResolution.
func (r *Resolver) Resolve(server, local *models.Document, pending, serverChanges []*models.LocalChange) (*Result, error) {
	// Воспроизводим очередь строго в порядке ChangeID
	ordered := make([]*models.LocalChange, len(pending))
	copy(ordered, pending)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ChangeID < ordered[j].ChangeID
	})

	result := &Result{MergedContent: server.Content}

	for _, change := range ordered {
		overlapping := overlaps(change, serverChanges)

		if len(overlapping) == 0 {
			// Нет пересечений - детерминированный сдвиг и применение
			shifted := r.shift(change, serverChanges)
			result.MergedContent = shifted.Apply(result.MergedContent)
			result.Applied++
			continue
		}

		res, err := r.resolveOverlap(server, local, change, overlapping, result)
		if res != nil {
			result.Resolutions = append(result.Resolutions, res)
		}
		if err != nil {
			return result, err
		}
	}

	r.logger.Debug("resolve completed",
		"document_id", local.ID,
		"applied", result.Applied,
		"dropped", result.Dropped,
		"resolutions", len(result.Resolutions))

	return result, nil
}

// resolveOverlap применяет политику для изменения, пересекающегося
// с изменениями сервера. Возвращает запись о разрешении и,
// для структурных конфликтов, ErrManualResolution.
func (r *Resolver) resolveOverlap(
	server, local *models.Document,
	change *models.LocalChange,
	overlapping []*models.LocalChange,
	result *Result,
) (*models.ConflictResolution, error) {
	// Политика оценивается против самого раннего пересекающегося
	// изменения сервера - выбор детерминирован порядком ChangeID.
	competitor := overlapping[0]

	switch {
	case change.Type == models.ChangeInsert && competitor.Type == models.ChangeInsert:
		return r.mergeInserts(change, competitor, result), nil

	case change.Type == models.ChangeDelete:
		return r.mergeDelete(change, competitor, result), nil

	case competitor.Type == models.ChangeDelete:
		return r.mergeAgainstDelete(change, competitor, result), nil

	case change.Type == models.ChangeFormat && competitor.Type == models.ChangeFormat:
		if change.Content == competitor.Content {
			// Обе стороны применили один и тот же стиль - дубликат
			result.Dropped++
			return r.record(change.DocumentID, models.StrategyMerge, change, nil), nil
		}
		// Один диапазон переформатирован по-разному - решает человек.
		// Документ НЕ отправляется на сервер, оба варианта сохраняются
		// в записи для внешнего разрешения.
		res := r.record(change.DocumentID, models.StrategyManual, change, nil)
		res.LocalCandidate = local.Content
		res.ServerCandidate = server.Content
		return res, fmt.Errorf("%w: document %s, change %s",
			ErrManualResolution, change.DocumentID, change.ChangeID)

	default:
		// comment и прочие аннотации не конфликтуют с текстом
		shifted := r.shift(change, overlapping)
		result.MergedContent = shifted.Apply(result.MergedContent)
		result.Applied++
		return nil, nil
	}
}

// mergeInserts упорядочивает две вставки в одной позиции по (timestamp, deviceID)
func (r *Resolver) mergeInserts(change, competitor *models.LocalChange, result *Result) *models.ConflictResolution {
	resolved := change.Clone()
	if competitor.Before(change) {
		// Вставка сервера идет первой - локальная смещается за нее
		resolved.Position += len(competitor.Content)
	}

	result.MergedContent = resolved.Apply(result.MergedContent)
	result.Applied++

	return r.record(change.DocumentID, models.StrategyMerge, change, resolved)
}

// mergeDelete применяет локальный delete против пересекающегося изменения сервера
func (r *Resolver) mergeDelete(change, competitor *models.LocalChange, result *Result) *models.ConflictResolution {
	if change.Timestamp.After(competitor.Timestamp) {
		// Более поздний delete побеждает
		resolved := r.shift(change, []*models.LocalChange{competitor})
		result.MergedContent = resolved.Apply(result.MergedContent)
		result.Applied++
		return r.record(change.DocumentID, models.StrategyMerge, change, resolved)
	}

	// Конкурирующее изменение сохраняется, delete сужается
	// до непересекающегося остатка
	resolved := narrowDelete(change, competitor)
	if resolved == nil {
		result.Dropped++
		return r.record(change.DocumentID, models.StrategyMerge, change, nil)
	}

	result.MergedContent = resolved.Apply(result.MergedContent)
	result.Applied++
	return r.record(change.DocumentID, models.StrategyMerge, change, resolved)
}

// mergeAgainstDelete применяет локальный insert/format против delete сервера
func (r *Resolver) mergeAgainstDelete(change, competitor *models.LocalChange, result *Result) *models.ConflictResolution {
	if competitor.Timestamp.After(change.Timestamp) {
		// Delete сервера позднее - локальное изменение отброшено:
		// его диапазон уже не существует
		result.Dropped++
		return r.record(change.DocumentID, models.StrategyMerge, change, nil)
	}

	// Локальное изменение сохраняется: позиция переносится
	// к началу удалённого диапазона
	resolved := change.Clone()
	if resolved.Position > competitor.Position {
		resolved.Position = competitor.Position
	}
	if resolved.Type == models.ChangeFormat {
		// Остался только кусок диапазона вне удалённой области
		s, e := change.Range()
		cs, ce := competitor.Range()
		resolved.Span = rangeRemainder(s, e, cs, ce)
		if resolved.Span <= 0 {
			result.Dropped++
			return r.record(change.DocumentID, models.StrategyMerge, change, nil)
		}
	}

	result.MergedContent = resolved.Apply(result.MergedContent)
	result.Applied++
	return r.record(change.DocumentID, models.StrategyMerge, change, resolved)
}

// record строит запись о разрешении конфликта для append-only журнала
func (r *Resolver) record(documentID string, strategy models.ResolutionStrategy, original, resolved *models.LocalChange) *models.ConflictResolution {
	return &models.ConflictResolution{
		ID:             r.newID(),
		DocumentID:     documentID,
		Strategy:       strategy,
		ResolvedBy:     "engine",
		ResolvedAt:     r.now(),
		OriginalChange: original.Clone(),
		ResolvedChange: resolved,
	}
}

// shift возвращает копию изменения с позицией, сдвинутой на эффект
// изменений сервера, расположенных левее. Insert сервера добавляет длину
// вставленного текста, delete вычитает перекрытую часть диапазона.
func (r *Resolver) shift(change *models.LocalChange, serverChanges []*models.LocalChange) *models.LocalChange {
	shifted := change.Clone()
	pos := shifted.Position

	for _, sc := range serverChanges {
		switch sc.Type {
		case models.ChangeInsert:
			if sc.Position < pos {
				shifted.Position += len(sc.Content)
			}
		case models.ChangeDelete:
			start, end := sc.Range()
			if end <= pos {
				shifted.Position -= sc.Span
			} else if start < pos {
				shifted.Position -= pos - start
			}
		case models.ChangeFormat, models.ChangeComment:
			// аннотации не сдвигают текст
		}
	}

	if shifted.Position < 0 {
		shifted.Position = 0
	}

	return shifted
}

// narrowDelete возвращает delete, суженный до непересекающегося с competitor
// остатка, или nil, если остаток пуст
func narrowDelete(change, competitor *models.LocalChange) *models.LocalChange {
	s, e := change.Range()
	cs, ce := competitor.Range()
	if competitor.Type == models.ChangeInsert {
		// Вставленный текст занимает [cs, cs+len) в итоговом содержимом
		ce = cs + len(competitor.Content)
	}

	resolved := change.Clone()
	switch {
	case s < cs:
		// Оставляем ведущий кусок до начала конкурента
		resolved.Span = cs - s
	case e > ce:
		// Оставляем хвост после конца конкурента
		resolved.Position = ce
		resolved.Span = e - ce
	default:
		// Диапазон полностью перекрыт - удалять нечего
		return nil
	}

	return resolved
}

// rangeRemainder возвращает длину части [s, e), не перекрытой [cs, ce)
func rangeRemainder(s, e, cs, ce int) int {
	overlapStart := max(s, cs)
	overlapEnd := min(e, ce)
	if overlapStart >= overlapEnd {
		return e - s
	}
	return (e - s) - (overlapEnd - overlapStart)
}

// overlaps возвращает изменения сервера, пересекающиеся с данным,
// в порядке ChangeID
func overlaps(change *models.LocalChange, serverChanges []*models.LocalChange) []*models.LocalChange {
	var found []*models.LocalChange
	for _, sc := range serverChanges {
		if change.Overlaps(sc) {
			found = append(found, sc)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].ChangeID < found[j].ChangeID
	})
	return found
}
