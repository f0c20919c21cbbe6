package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity and report caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	VehicleCacheTTL = 5 * time.Minute  // vehicle metadata rarely changes
	ReportCacheTTL  = 60 * time.Second // advisory reports tolerate staleness
)

// Key prefixes
const (
	vehicleCachePrefix = "cache:vehicle:"
	chainReportPrefix  = "cache:chain-report:"
)

// CachedVehicle represents a cached vehicle entity.
type CachedVehicle struct {
	ID           string `json:"id"`
	Registration string `json:"registration"`
	OwnerID      string `json:"owner_id"`
}

// GetVehicle retrieves a vehicle from cache. Returns nil on a cache miss.
func (s *CacheStore) GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error) {
	data, err := s.client.Get(ctx, vehicleCachePrefix+vehicleID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var vehicle CachedVehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// SetVehicle stores a vehicle in cache.
func (s *CacheStore) SetVehicle(ctx context.Context, vehicle *CachedVehicle) error {
	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, vehicleCachePrefix+vehicle.ID, data, VehicleCacheTTL).Err()
}

// InvalidateVehicle removes a vehicle from cache.
func (s *CacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	return s.client.Del(ctx, vehicleCachePrefix+vehicleID).Err()
}

// GetChainReport retrieves a cached mileage-chain validation report.
// Returns nil on a cache miss. The raw JSON is returned so the handler can
// serve it without re-marshaling.
func (s *CacheStore) GetChainReport(ctx context.Context, vehicleID string) (json.RawMessage, error) {
	data, err := s.client.Get(ctx, chainReportPrefix+vehicleID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// SetChainReport stores a mileage-chain validation report.
func (s *CacheStore) SetChainReport(ctx context.Context, vehicleID string, report json.RawMessage) error {
	return s.client.Set(ctx, chainReportPrefix+vehicleID, []byte(report), ReportCacheTTL).Err()
}

// InvalidateChainReport removes a vehicle's chain report from cache.
// Called after every write to that vehicle's ledger.
func (s *CacheStore) InvalidateChainReport(ctx context.Context, vehicleID string) error {
	return s.client.Del(ctx, chainReportPrefix+vehicleID).Err()
}
