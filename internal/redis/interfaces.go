package redis

import (
	"context"
	"encoding/json"
	"time"
)

// LockStoreInterface defines the interface for per-vehicle write locking.
type LockStoreInterface interface {
	AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error)
	ReleaseVehicleLock(ctx context.Context, vehicleID string) error
}

// CacheStoreInterface defines the interface for entity and report caching.
type CacheStoreInterface interface {
	GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error)
	SetVehicle(ctx context.Context, vehicle *CachedVehicle) error
	InvalidateVehicle(ctx context.Context, vehicleID string) error
	GetChainReport(ctx context.Context, vehicleID string) (json.RawMessage, error)
	SetChainReport(ctx context.Context, vehicleID string, report json.RawMessage) error
	InvalidateChainReport(ctx context.Context, vehicleID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
