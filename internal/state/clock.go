package state

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time to the fade window.
type Clock interface {
	Now() time.Time
}

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the
	// call stopped the timer before it fired.
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	Clock
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler is the wall-clock scheduler backed by time.AfterFunc.
// Callbacks run on their own goroutine; Post, when set, is used to hand
// them to the caller's event loop instead.
type SystemScheduler struct {
	Post func(func())
}

func (s SystemScheduler) Now() time.Time { return time.Now() }

func (s SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	if s.Post != nil {
		post := s.Post
		return time.AfterFunc(d, func() { post(f) })
	}
	return time.AfterFunc(d, f)
}

// idSource hands out stroke IDs that are unique within a session.
type idSource struct {
	session string
	seq     uint64
}

func newIDSource() *idSource {
	return &idSource{session: uuid.NewString()[:8]}
}

func (s *idSource) next() string {
	return fmt.Sprintf("%s-%d", s.session, atomic.AddUint64(&s.seq, 1))
}
