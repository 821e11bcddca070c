// Package clock содержит монотонный счетчик изменений клиента.
package clock

import (
	"sync"

	"github.com/google/uuid"
)

// Clock представляет монотонный счетчик для нумерации локальных изменений.
// Пара (counter, deviceID) дает строго возрастающие в рамках устройства
// идентификаторы без синхронизации физического времени.
type Clock struct {
	deviceID string     // уникальный идентификатор устройства
	counter  int64      // монотонно возрастающий счетчик
	mu       sync.Mutex // мьютекс для потокобезопасности
}

// New создает новый счетчик с уникальным идентификатором устройства (UUID).
func New() *Clock {
	return &Clock{
		counter:  0,
		deviceID: uuid.New().String(),
	}
}

// NewWithDeviceID создает счетчик с заданным идентификатором устройства.
// Используется для тестов и восстановления состояния после перезапуска.
func NewWithDeviceID(deviceID string) *Clock {
	return &Clock{
		counter:  0,
		deviceID: deviceID,
	}
}

// Tick увеличивает счетчик и возвращает новое значение.
// Вызывается при записи каждого нового локального изменения.
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	return c.counter
}

// Counter возвращает текущее значение счетчика без его изменения.
func (c *Clock) Counter() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counter
}

// DeviceID возвращает идентификатор устройства.
func (c *Clock) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.deviceID
}

// SetCounter устанавливает счетчик в заданное значение.
// Используется при восстановлении состояния из metadata storage,
// чтобы после перезапуска не выдать уже использованный идентификатор.
func (c *Clock) SetCounter(counter int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter > c.counter {
		c.counter = counter
	}
}
