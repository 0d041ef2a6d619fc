package process

import (
	"fmt"

	"github.com/atmoscale/nudge/internal/host"
	"github.com/atmoscale/nudge/internal/log"
)

// Manager holds an ordered list of atmosphere processes and drives them
// through a shared lifecycle. Processes run in registration order each step;
// finalization runs in reverse order.
type Manager struct {
	processes []AtmosphereProcess
}

// NewManager creates an empty process manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register appends a process to the run sequence.
func (m *Manager) Register(p AtmosphereProcess) {
	m.processes = append(m.processes, p)
}

// SetGrids hands the grids manager to every registered process.
func (m *Manager) SetGrids(gm *host.GridsManager) error {
	for _, p := range m.processes {
		if err := p.SetGrids(gm); err != nil {
			return fmt.Errorf("could not set grids on process %s: %w", p.Name(), err)
		}
	}
	return nil
}

// Initialize initializes every registered process in order.
func (m *Manager) Initialize() error {
	for _, p := range m.processes {
		if err := p.Initialize(); err != nil {
			return fmt.Errorf("could not initialize process %s: %w", p.Name(), err)
		}
		log.Infow("process initialized", "process", p.Name(), "type", p.Type().String())
	}
	return nil
}

// Run advances every process by one step. The first failure aborts the step
// and is surfaced to the caller.
func (m *Manager) Run(currentTime, dt float64) error {
	for _, p := range m.processes {
		if err := p.Run(currentTime, dt); err != nil {
			return fmt.Errorf("process %s failed at t=%g: %w", p.Name(), currentTime, err)
		}
	}
	return nil
}

// Finalize finalizes processes in reverse registration order, releasing
// resources even if an earlier finalize fails; the first error is returned.
func (m *Manager) Finalize() error {
	var firstErr error
	for i := len(m.processes) - 1; i >= 0; i-- {
		p := m.processes[i]
		if err := p.Finalize(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not finalize process %s: %w", p.Name(), err)
		}
	}
	return firstErr
}
