package analyzer

import (
	"sync"
	"sync/atomic"
)

type LifecycleState int32

const (
	Unprobed LifecycleState = iota
	Enabled
	Disabled
)

func (s LifecycleState) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "unprobed"
	}
}

// Lifecycle tracks whether the audit capability can run. Transitions are one
// way: Unprobed moves to Enabled or Disabled at probe time, Enabled moves to
// Disabled on fatal runtime failures. Disabled is terminal for the run and is
// never reversed, a later successful call cannot re-enable the capability.
type Lifecycle struct {
	state  atomic.Int32
	mu     sync.Mutex
	reason string
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

func (l *Lifecycle) State() LifecycleState {
	return LifecycleState(l.state.Load())
}

// Enable moves Unprobed to Enabled, reports false if the state had already
// been decided.
func (l *Lifecycle) Enable() bool {
	return l.state.CompareAndSwap(int32(Unprobed), int32(Enabled))
}

// Disable is idempotent, two racing callers both observe Disabled afterwards
// and the first caller's reason wins.
func (l *Lifecycle) Disable(reason string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if LifecycleState(l.state.Load()) == Disabled {
		return false
	}

	l.state.Store(int32(Disabled))
	l.reason = reason
	return true
}

func (l *Lifecycle) DisabledReason() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reason
}
