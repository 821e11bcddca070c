package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client instance metadata
type MetadataStorage interface {
	// SaveDeviceID persists the device identifier of this client instance
	SaveDeviceID(ctx context.Context, deviceID string) error

	// GetDeviceID retrieves the stored device identifier
	// Returns empty string if no device ID has been saved yet
	GetDeviceID(ctx context.Context) (string, error)

	// SaveClock persists the change counter so a restart never
	// reissues an already used change ID
	SaveClock(ctx context.Context, counter int64) error

	// GetClock retrieves the persisted change counter
	// Returns 0 if no counter has been saved yet
	GetClock(ctx context.Context) (int64, error)
}
