package id

import (
	"sync"
	"time"
)

// Начало отсчета времени (01.01.2025 00:00:00 UTC)
const Epoch = 1735689600000 // Timestamp в миллисекундах

const (
	timestampBits = 41
	machineIDBits = 10
	sequenceBits  = 12

	MaxMachineID = -1 ^ (-1 << machineIDBits) // 1023
	maxSequence  = -1 ^ (-1 << sequenceBits)  // 4095

	machineIDShift = sequenceBits
	timestampShift = sequenceBits + machineIDBits
)

// Source allocates primary keys for persisted entities.
type Source interface {
	NextID() (int64, error)
}

// Generator is a Snowflake-style allocator:
// [1 unused][41 ms since Epoch][10 machine id][12 sequence].
//
// IDs from one Generator are strictly increasing. IDs from generators with
// different machine ids never collide; keeping machine ids disjoint across
// processes is up to the operator.
type Generator struct {
	machineID int64
	now       func() int64

	mu            sync.Mutex
	lastTimestamp int64
	sequence      int64
}

type Option func(*Generator)

// WithClock replaces the wall clock. The function must return Unix milliseconds.
func WithClock(now func() int64) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func New(machineID int64, opts ...Option) (*Generator, error) {
	if machineID < 0 || machineID > MaxMachineID {
		return nil, &ConfigError{MachineID: machineID}
	}

	g := &Generator{
		machineID:     machineID,
		now:           wallClock,
		lastTimestamp: -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) MachineID() int64 {
	return g.machineID
}

// NextID returns a new identifier. It fails with *ClockError when the clock
// reads earlier than the previous allocation; the generator never waits
// out a backwards jump. When 4096 ids were already handed out in the
// current millisecond it spins, holding the lock, until the clock ticks.
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now < g.lastTimestamp {
		return 0, &ClockError{Last: g.lastTimestamp, Now: now}
	}

	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			for now <= g.lastTimestamp {
				now = g.now()
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = now

	return ((now - Epoch) << timestampShift) | (g.machineID << machineIDShift) | g.sequence, nil
}

func wallClock() int64 {
	return time.Now().UnixMilli()
}
