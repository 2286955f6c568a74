package metrics

import (
	"errors"
	"tasktracker/internal/id"
)

const (
	idErrorClock = "clock_moved_backwards"
	idErrorOther = "other"
)

type instrumentedSource struct {
	src id.Source
}

// InstrumentIDs counts allocations and failures of src.
func InstrumentIDs(src id.Source) id.Source {
	return &instrumentedSource{src: src}
}

func (s *instrumentedSource) NextID() (int64, error) {
	v, err := s.src.NextID()
	if err != nil {
		kind := idErrorOther
		if errors.Is(err, id.ErrClockMovedBackwards) {
			kind = idErrorClock
		}
		IDErrors.WithLabelValues(kind).Inc()
		return 0, err
	}
	IDsGenerated.Inc()
	return v, nil
}
