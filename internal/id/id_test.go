package id

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func frozenClock(ms int64) func() int64 {
	return func() int64 { return ms }
}

func TestNextIDUnique(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)

	const count = 1000
	ids := make(map[int64]struct{}, count)
	for i := 0; i < count; i++ {
		v, err := g.NextID()
		require.NoError(t, err)
		ids[v] = struct{}{}
	}
	require.Len(t, ids, count)
}

func TestNextIDUniqueConcurrent(t *testing.T) {
	g, err := New(3)
	require.NoError(t, err)

	const workers = 8
	const perWorker = 12500

	results := make([][]int64, workers)
	wg := &sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			out := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				v, err := g.NextID()
				if err != nil {
					t.Errorf("next id: %v", err)
					return
				}
				out = append(out, v)
			}
			results[w] = out
		}(w)
	}
	wg.Wait()

	seen := make(map[int64]struct{}, workers*perWorker)
	for _, out := range results {
		// each worker observes its own calls in order
		for i := 1; i < len(out); i++ {
			require.Greater(t, out[i], out[i-1])
		}
		for _, v := range out {
			seen[v] = struct{}{}
		}
	}
	require.Len(t, seen, workers*perWorker)
}

func TestNextIDMonotonic(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)

	prev, err := g.NextID()
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		next, err := g.NextID()
		require.NoError(t, err)
		require.Greater(t, next, prev)
		require.GreaterOrEqual(t, Decode(next).Timestamp, Decode(prev).Timestamp)
		prev = next
	}
}

func TestNextIDMachineBits(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		v, err := g.NextID()
		require.NoError(t, err)
		require.Equal(t, int64(1), (v>>12)&0x3FF)
		require.Positive(t, v)
	}
}

func TestNewMachineIDRange(t *testing.T) {
	for _, machineID := range []int64{-1, 1024, 1 << 20} {
		_, err := New(machineID)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrMachineIDOutOfRange)

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		require.Equal(t, machineID, cfgErr.MachineID)
	}

	for _, machineID := range []int64{0, 1023} {
		g, err := New(machineID)
		require.NoError(t, err)
		require.Equal(t, machineID, g.MachineID())
	}
}

func TestNextIDClockMovedBackwards(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)

	g.lastTimestamp = time.Now().UnixMilli() + 5000

	_, err = g.NextID()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrClockMovedBackwards)
	require.Contains(t, err.Error(), "clock moved backwards")

	var clockErr *ClockError
	require.True(t, errors.As(err, &clockErr))
	require.InDelta(t, 5000, clockErr.Regression().Milliseconds(), 1000)
}

func TestNextIDClockErrorLeavesStateUntouched(t *testing.T) {
	ms := int64(Epoch + 10_000)
	g, err := New(2, WithClock(func() int64 { return ms }))
	require.NoError(t, err)

	first, err := g.NextID()
	require.NoError(t, err)

	ms -= 50
	_, err = g.NextID()
	var clockErr *ClockError
	require.True(t, errors.As(err, &clockErr))
	require.Equal(t, 50*time.Millisecond, clockErr.Regression())

	// once the clock catches up allocation resumes above the last id
	ms += 50
	next, err := g.NextID()
	require.NoError(t, err)
	require.Greater(t, next, first)
	require.Equal(t, int64(1), Decode(next).Sequence)
}

func TestNextIDSequenceRollover(t *testing.T) {
	const base = int64(Epoch + 1_000_000)
	var reads atomic.Int64
	clock := func() int64 {
		// the 4097th call reads base once, then spins until the tick
		if reads.Add(1) <= maxSequence+2 {
			return base
		}
		return base + 1
	}

	g, err := New(5, WithClock(clock))
	require.NoError(t, err)

	ids := make([]int64, 0, maxSequence+2)
	for i := 0; i < maxSequence+2; i++ {
		v, err := g.NextID()
		require.NoError(t, err)
		ids = append(ids, v)
	}

	first := Decode(ids[0])
	for i, v := range ids[:maxSequence+1] {
		p := Decode(v)
		require.Equal(t, first.Timestamp, p.Timestamp)
		require.Equal(t, int64(i), p.Sequence)
	}

	last := Decode(ids[maxSequence+1])
	require.Equal(t, first.Timestamp+1, last.Timestamp)
	require.Equal(t, int64(0), last.Sequence)
	require.Greater(t, ids[maxSequence+1], ids[maxSequence])
}

func TestNextIDSameMillisecond(t *testing.T) {
	const ms = int64(Epoch + 123_456)
	g, err := New(7, WithClock(frozenClock(ms)))
	require.NoError(t, err)

	a, err := g.NextID()
	require.NoError(t, err)
	b, err := g.NextID()
	require.NoError(t, err)

	pa, pb := Decode(a), Decode(b)
	require.Equal(t, pa.Timestamp, pb.Timestamp)
	require.Equal(t, int64(123_456), pa.Timestamp)
	require.Equal(t, int64(1), pb.Sequence-pa.Sequence)
	require.Equal(t, int64(7), pa.MachineID)
	require.Equal(t, int64(7), pb.MachineID)
	require.Equal(t, time.UnixMilli(ms).UTC(), pa.Time)
}

func TestNextIDNewMillisecondResetsSequence(t *testing.T) {
	ms := int64(Epoch + 1)
	g, err := New(0, WithClock(func() int64 { return ms }))
	require.NoError(t, err)

	_, err = g.NextID()
	require.NoError(t, err)
	_, err = g.NextID()
	require.NoError(t, err)

	ms++
	v, err := g.NextID()
	require.NoError(t, err)
	require.Equal(t, int64(0), Decode(v).Sequence)
	require.Equal(t, int64(2), Decode(v).Timestamp)
}
