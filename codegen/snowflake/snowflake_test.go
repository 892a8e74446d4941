package snowflake

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagekit/errors"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{DatacenterID: 1, WorkerID: 1}, false},
		{"upper bound", Config{DatacenterID: 31, WorkerID: 31}, false},
		{"lower bound", Config{}, false},
		{"negative datacenter", Config{DatacenterID: -1, WorkerID: 1}, true},
		{"datacenter too large", Config{DatacenterID: 32, WorkerID: 1}, true},
		{"negative worker", Config{DatacenterID: 1, WorkerID: -1}, true},
		{"worker too large", Config{DatacenterID: 1, WorkerID: 32}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewGenerator(tt.cfg)
			if tt.wantErr {
				assert.True(t, errors.IsConfiguration(err))
				assert.Nil(t, gen)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.DatacenterID, gen.datacenterID)
			assert.Equal(t, tt.cfg.WorkerID, gen.workerID)
		})
	}
}

func TestNextID_Concurrent(t *testing.T) {
	gen, err := NewGenerator(Config{DatacenterID: 1, WorkerID: 1})
	require.NoError(t, err)

	const goroutines, perGoroutine = 8, 1000
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, goroutines*perGoroutine)
		wg   sync.WaitGroup
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := gen.NextIDs(perGoroutine)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestNextIDs_Increasing(t *testing.T) {
	gen, err := NewGenerator(Config{DatacenterID: 2, WorkerID: 3})
	require.NoError(t, err)

	ids, err := gen.NextIDs(5000)
	require.NoError(t, err)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	ids, err = gen.NextIDs(0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSequenceOverflowWaitsForNextMillisecond(t *testing.T) {
	gen, err := NewGenerator(Config{})
	require.NoError(t, err)
	ms := int64(1700000000000)
	calls := 0
	gen.now = func() int64 {
		calls++
		// 序列号用完后的第一次轮询仍在同一毫秒
		if calls > maxSequence+2 {
			return ms + 1
		}
		return ms
	}

	ids, err := gen.NextIDs(maxSequence + 2)
	require.NoError(t, err)
	last := Parse(ids[len(ids)-1])
	assert.Equal(t, int64(0), last.Sequence)
	assert.Equal(t, ms+1, last.Time.UnixMilli())
	assert.Equal(t, int64(maxSequence), Parse(ids[len(ids)-2]).Sequence)
}

func TestNextID_ClockMovedBackwards(t *testing.T) {
	gen, err := NewGenerator(Config{})
	require.NoError(t, err)
	ms := int64(1700000000000)
	gen.now = func() int64 { return ms }

	_, err = gen.NextID()
	require.NoError(t, err)
	ms -= 5
	_, err = gen.NextID()
	assert.True(t, errors.IsInternal(err))
	assert.Contains(t, err.Error(), "5ms")
}

func TestParse(t *testing.T) {
	gen, err := NewGenerator(Config{DatacenterID: 7, WorkerID: 9})
	require.NoError(t, err)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	gen.now = func() int64 { return at.UnixMilli() }

	first, err := gen.NextID()
	require.NoError(t, err)
	second, err := gen.NextID()
	require.NoError(t, err)

	p := Parse(second)
	assert.Equal(t, at, p.Time)
	assert.Equal(t, int64(7), p.DatacenterID)
	assert.Equal(t, int64(9), p.WorkerID)
	assert.Equal(t, int64(1), p.Sequence)
	assert.Equal(t, int64(0), Parse(first).Sequence)
}

func BenchmarkNextID(b *testing.B) {
	gen, _ := NewGenerator(Config{DatacenterID: 1, WorkerID: 1})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = gen.NextID()
	}
}
