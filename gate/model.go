package gate

import (
	"errors"
	"time"
)

// DefaultPollInterval is how often a waiting caller re-evaluates the window
// when no earlier expiry is known.
const DefaultPollInterval = time.Second

var (
	ErrInvalidConfig = errors.New("invalid gate configuration")
	ErrWaitCanceled  = errors.New("gate wait canceled")
	ErrWaitExceeded  = errors.New("gate max wait exceeded")
)

// Stats is a point-in-time view of a Gate.
type Stats struct {
	Limit    int
	Window   time.Duration
	Used     int    // live admissions in the trailing window
	Waiting  int    // callers currently suspended
	Granted  uint64 // admissions since construction
	Canceled uint64 // waits abandoned since construction
}

// Available is the number of admissions that would succeed right now.
func (s Stats) Available() int {
	return max(s.Limit-s.Used, 0)
}

// entry is one admission in the history log.
type entry struct {
	id uint64
	at time.Time
}
