// Package process defines the lifecycle contract shared by all atmosphere
// processes (physics updates, diagnostics) and the manager that drives a set
// of them through it.
package process

import (
	"fmt"

	"github.com/atmoscale/nudge/internal/host"
	"github.com/atmoscale/nudge/internal/types"
)

// Type tags the kind of work a process performs.
type Type int

const (
	Physics Type = iota
	Diagnostic
)

func (t Type) String() string {
	switch t {
	case Physics:
		return "physics"
	case Diagnostic:
		return "diagnostic"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// State is the lifecycle position of a process.
type State int

const (
	Uninitialized State = iota
	Initialized
	Running
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// AtmosphereProcess is the fixed capability set every process implements.
// The host calls SetGrids once, Initialize once, Run once per step, and
// Finalize once, in that order.
type AtmosphereProcess interface {
	Name() string
	Type() Type
	SetGrids(gm *host.GridsManager) error
	Initialize() error
	Run(currentTime, dt float64) error
	Finalize() error
}

// Lifecycle tracks lifecycle state for a process implementation and rejects
// out-of-order transitions with ErrInvalidState. Embed it and call the
// require/advance helpers from each lifecycle method.
type Lifecycle struct {
	state State
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	return l.state
}

// RequireState returns ErrInvalidState unless the current state is one of
// the allowed states.
func (l *Lifecycle) RequireState(op string, allowed ...State) error {
	for _, s := range allowed {
		if l.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s called in state %s", types.ErrInvalidState, op, l.state)
}

// Advance moves to the given state.
func (l *Lifecycle) Advance(s State) {
	l.state = s
}
