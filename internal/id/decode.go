package id

import (
	"strconv"
	"time"
)

// Parts holds the fields packed into an identifier.
type Parts struct {
	ID        int64     `json:"id,string"`
	Time      time.Time `json:"time"`
	Timestamp int64     `json:"timestamp"` // ms since Epoch
	MachineID int64     `json:"machine_id"`
	Sequence  int64     `json:"sequence"`
}

// Расшифровка ID
func Decode(v int64) Parts {
	ts := (v >> timestampShift) & (-1 ^ (-1 << timestampBits))
	return Parts{
		ID:        v,
		Time:      time.UnixMilli(ts + Epoch).UTC(),
		Timestamp: ts,
		MachineID: (v >> machineIDShift) & MaxMachineID,
		Sequence:  v & maxSequence,
	}
}

// Parse reads the decimal form ids are rendered in.
func Parse(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func Format(v int64) string {
	return strconv.FormatInt(v, 10)
}
