package syncer

// State состояние машины синхронизации одного документа.
// Успешный цикл: Idle -> Pulling -> Merging -> Pushing -> Idle.
// Любой сбой: -> Failed -> Idle (повтор позже, с backoff).
type State int

const (
	// StateIdle документ не синхронизируется
	StateIdle State = iota
	// StatePulling идет загрузка документа с сервера
	StatePulling
	// StateMerging идет слияние с очередью локальных изменений
	StateMerging
	// StatePushing идет отправка смерженных изменений
	StatePushing
	// StateFailed последний цикл завершился сбоем, очередь сохранена
	StateFailed
)

// String возвращает имя состояния
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePulling:
		return "pulling"
	case StateMerging:
		return "merging"
	case StatePushing:
		return "pushing"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome исход одной сессии синхронизации
type Outcome string

const (
	// OutcomeNoop версии совпадают, очередь пуста - сеть не трогали
	OutcomeNoop Outcome = "noop"
	// OutcomeSynced изменения подтверждены сервером, очередь заархивирована
	OutcomeSynced Outcome = "synced"
	// OutcomeFastForward локальная копия замещена серверной (очередь была пуста)
	OutcomeFastForward Outcome = "fast-forward"
	// OutcomeFailed цикл не удался, очередь сохранена
	OutcomeFailed Outcome = "failed"
	// OutcomeManual требуется ручное разрешение конфликта
	OutcomeManual Outcome = "manual"
	// OutcomeCoalesced запрос слился с уже идущей сессией этого документа
	OutcomeCoalesced Outcome = "coalesced"
)

// Session эфемерная запись одной попытки синхронизации документа.
// Существует только на время цикла, никогда не персистится.
type Session struct {
	DocumentID string
	Outcome    Outcome
	Pulled     int
	Pushed     int
	Conflicts  int
}
