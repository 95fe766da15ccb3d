package thermo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"thermotel/pkg/common"
	_ "thermotel/pkg/testing"
)

type failingCounter struct{}

func (f *failingCounter) Incr(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, errors.New("counter backend down")
}

func TestWindowLimiterAllowsUpToCapacity(t *testing.T) {
	common.SetTestLoggerNop()

	store := NewWindowLimiterStore(NewMemoryWindowCounter(), "test", WindowConfig{Capacity: 3, Window: time.Minute})
	serial := uuid.NewString()

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow(context.Background(), serial)
		assert.NoError(t, err)
		assert.True(t, allowed)
	}

	// Rejected attempts keep consuming window slots.
	for i := 0; i < 2; i++ {
		allowed, err := store.Allow(context.Background(), serial)
		assert.NoError(t, err)
		assert.False(t, allowed)
	}

	// Another device has its own window.
	allowed, err := store.Allow(context.Background(), uuid.NewString())
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestWindowLimiterPerDeviceOverride(t *testing.T) {
	common.SetTestLoggerNop()

	store := NewWindowLimiterStore(NewMemoryWindowCounter(), "test", WindowConfig{Capacity: 2, Window: time.Minute})
	serial := uuid.NewString()

	store.SetWindow(serial, WindowConfig{Capacity: 5, Window: time.Minute})
	assert.Equal(t, WindowConfig{Capacity: 5, Window: time.Minute}, store.GetWindow(serial))
	assert.Equal(t, WindowConfig{Capacity: 2, Window: time.Minute}, store.GetWindow(uuid.NewString()))

	for i := 0; i < 5; i++ {
		allowed, err := store.Allow(context.Background(), serial)
		assert.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := store.Allow(context.Background(), serial)
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestWindowLimiterZeroCapacityDeniesAll(t *testing.T) {
	common.SetTestLoggerNop()

	store := NewWindowLimiterStore(NewMemoryWindowCounter(), "test", WindowConfig{Capacity: 2, Window: time.Minute})
	serial := uuid.NewString()

	store.SetWindow(serial, WindowConfig{Capacity: 0, Window: time.Minute})

	allowed, err := store.Allow(context.Background(), serial)
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestWindowLimiterWindowRolls(t *testing.T) {
	common.SetTestLoggerNop()

	counter := NewMemoryWindowCounter()
	store := NewWindowLimiterStore(counter, "test", WindowConfig{Capacity: 1, Window: 10 * time.Second})
	serial := uuid.NewString()

	base := time.Unix(1700000000, 0)
	store.now = func() time.Time { return base }
	counter.now = store.now

	allowed, err := store.Allow(context.Background(), serial)
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = store.Allow(context.Background(), serial)
	assert.NoError(t, err)
	assert.False(t, allowed)

	// The next bucket opens a fresh window.
	store.now = func() time.Time { return base.Add(10 * time.Second) }
	counter.now = store.now

	allowed, err = store.Allow(context.Background(), serial)
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestWindowLimiterConcurrentSingleSlot(t *testing.T) {
	common.SetTestLoggerNop()

	store := NewWindowLimiterStore(NewMemoryWindowCounter(), "test", WindowConfig{Capacity: 1, Window: time.Minute})
	serial := uuid.NewString()

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := store.Allow(context.Background(), serial)
			if err == nil && allowed {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, admitted)
}

func TestWithRedisCounter(t *testing.T) {
	common.SetTestLoggerNop()

	if os.Getenv(common.EnvKeyRunIntegrationTests) != "true" {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS environment variable not set")
	}

	addr := os.Getenv(common.EnvKeyThermoRedisAddr)
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis unreachable at %s: %v", addr, err)
	}

	store := NewWindowLimiterStore(&RedisWindowCounter{Client: client}, "test", WindowConfig{Capacity: 2, Window: time.Minute})
	serial := uuid.NewString()

	for i := 0; i < 2; i++ {
		allowed, err := store.Allow(context.Background(), serial)
		assert.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := store.Allow(context.Background(), serial)
	assert.NoError(t, err)
	assert.False(t, allowed)

	// Buckets are per device; leftover keys expire with the window TTL.
	allowed, err = store.Allow(context.Background(), uuid.NewString())
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllowOrFailOpenOnCounterError(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	store := NewWindowLimiterStore(&failingCounter{}, "ingest", WindowConfig{Capacity: 1, Window: time.Minute})
	serial := uuid.NewString()

	// Plain Allow surfaces the backend failure as a rejection.
	allowed, err := store.Allow(context.Background(), serial)
	assert.Error(t, err)
	assert.False(t, allowed)

	assert.True(t, store.AllowOrFailOpen(context.Background(), serial))

	logs := ParseLogs(buf)

	{
		found := false
		for _, log := range logs {
			lobj := log.(map[string]any)
			if lobj["category"] == "limiter" &&
				lobj["logger"] == "thermo_core" &&
				lobj["msg"] == "Window counter unavailable" &&
				lobj["scope"] == "ingest" &&
				lobj["serial"] == serial {
				found = true
			}
		}
		assert.True(t, found)
	}
}
