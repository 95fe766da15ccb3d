package thermo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"thermotel/pkg/common"
)

// WindowConfig is a fixed counting window: at most Capacity attempts
// per Window. A Capacity of zero rejects everything.
type WindowConfig struct {
	Capacity int
	Window   time.Duration
}

// WindowCounter increments a named bucket and reports the count after
// the increment. Implementations must be safe for concurrent use.
type WindowCounter interface {
	Incr(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

type memoryBucket struct {
	count     int64
	expiresAt time.Time
}

// MemoryWindowCounter keeps bucket counts in process memory. A bucket
// is reset lazily by the first increment that finds it expired, and
// stale buckets are swept once the map grows past sweepThreshold.
type MemoryWindowCounter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
	now     func() time.Time
}

const sweepThreshold = 4096

func NewMemoryWindowCounter() *MemoryWindowCounter {
	return &MemoryWindowCounter{buckets: make(map[string]*memoryBucket)}
}

func (m *MemoryWindowCounter) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

func (m *MemoryWindowCounter) Incr(_ context.Context, key string, expiry time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	bucket, exists := m.buckets[key]
	if !exists || now.After(bucket.expiresAt) {
		bucket = &memoryBucket{expiresAt: now.Add(expiry)}
		m.buckets[key] = bucket
	}
	bucket.count++

	if len(m.buckets) > sweepThreshold {
		for k, b := range m.buckets {
			if now.After(b.expiresAt) {
				delete(m.buckets, k)
			}
		}
	}

	return bucket.count, nil
}

// RedisWindowCounter shares bucket counts across instances. The TTL is
// set when a bucket is first incremented and Redis expiry retires it.
type RedisWindowCounter struct {
	Client *redis.Client
}

func (r *RedisWindowCounter) Incr(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	count, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.Client.Expire(ctx, key, expiry).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// WindowLimiterStore manages per-device fixed windows for one scope:
// device serial -> window config. Buckets align to the wall clock, so
// a burst straddling a bucket boundary can be admitted up to twice the
// capacity across the two adjacent windows.
type WindowLimiterStore struct {
	counter   WindowCounter
	scope     string
	mu        sync.Mutex
	defaults  WindowConfig
	overrides map[string]WindowConfig
	now       func() time.Time
}

func NewWindowLimiterStore(counter WindowCounter, scope string, defaults WindowConfig) *WindowLimiterStore {
	return &WindowLimiterStore{
		counter:   counter,
		scope:     scope,
		defaults:  defaults,
		overrides: make(map[string]WindowConfig),
	}
}

func (s *WindowLimiterStore) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *WindowLimiterStore) GetWindow(deviceSerial string) WindowConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, exists := s.overrides[deviceSerial]
	if !exists {
		cfg = s.defaults
	}
	return cfg
}

func (s *WindowLimiterStore) SetWindow(deviceSerial string, cfg WindowConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[deviceSerial] = cfg
}

// Allow counts one attempt for the device in the current window and
// reports whether it fits the capacity. Rejected attempts consume
// window slots too.
func (s *WindowLimiterStore) Allow(ctx context.Context, deviceSerial string) (bool, error) {
	cfg := s.GetWindow(deviceSerial)

	secs := int64(cfg.Window / time.Second)
	if secs < 1 {
		secs = 1
	}

	bucket := s.clock().Unix() / secs
	key := fmt.Sprintf("thermotel:window:%s:%s:%d", s.scope, deviceSerial, bucket)

	count, err := s.counter.Incr(ctx, key, time.Duration(secs)*time.Second)
	if err != nil {
		return false, err
	}
	return count <= int64(cfg.Capacity), nil
}

// AllowOrFailOpen admits the attempt when the counter backend is
// unreachable, logging the failure.
func (s *WindowLimiterStore) AllowOrFailOpen(ctx context.Context, deviceSerial string) bool {
	allowed, err := s.Allow(ctx, deviceSerial)
	if err != nil {
		common.GetLoggerWith(
			common.LoggerNameThermoCore,
			zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoLimiter),
		).Error("Window counter unavailable",
			zap.String("scope", s.scope),
			zap.String("serial", deviceSerial),
			zap.Error(err))
		return true
	}
	return allowed
}
