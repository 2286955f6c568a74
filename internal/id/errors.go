package id

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMachineIDOutOfRange = errors.New("machine id out of range")
	ErrClockMovedBackwards = errors.New("clock moved backwards")
)

// ConfigError is returned by New for a machine id outside [0, MaxMachineID].
type ConfigError struct {
	MachineID int64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %d is not in [0, %d]", ErrMachineIDOutOfRange, e.MachineID, MaxMachineID)
}

func (e *ConfigError) Unwrap() error {
	return ErrMachineIDOutOfRange
}

// ClockError is returned by NextID when the wall clock reads earlier than
// the last allocation. Callers should treat it as fatal for the write.
type ClockError struct {
	Last int64 // Unix ms of the last allocated id
	Now  int64 // Unix ms observed by the failed call
}

func (e *ClockError) Regression() time.Duration {
	return time.Duration(e.Last-e.Now) * time.Millisecond
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("%s: refusing to generate id for %dms", ErrClockMovedBackwards, e.Last-e.Now)
}

func (e *ClockError) Unwrap() error {
	return ErrClockMovedBackwards
}
