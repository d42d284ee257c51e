// Package battery integrates instantaneous current draw into a monotone
// watt-hours-consumed accumulator, independent of the EKS mutex.
package battery

import (
	"context"
	"sync"
	"time"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
)

// defaultSampleInterval is used by Run when the caller passes a
// non-positive interval.
const defaultSampleInterval = 100 * time.Millisecond

// Integrator tracks energy consumed from the eboard's battery pack. It owns
// its own mutex, separate from kinstate.Store, since it accumulates on its
// own schedule independent of kinematic updates.
type Integrator struct {
	mu                sync.Mutex
	nominalVoltageV   float64
	currentDrawA      float64
	wattHoursConsumed float64
}

// NewIntegrator creates an Integrator for a battery pack with the given
// nominal voltage.
func NewIntegrator(nominalVoltageV float64) *Integrator {
	return &Integrator{nominalVoltageV: nominalVoltageV, currentDrawA: 1.0}
}

// Run samples the shared kinematic state's live input current on a ticker
// and discharges the integrator accordingly, until ctx is canceled. intervalMs
// non-positive falls back to defaultSampleInterval.
func (i *Integrator) Run(ctx context.Context, eks *kinstate.Store, intervalMs int) {
	interval := time.Duration(intervalMs) * time.Millisecond
	if interval <= 0 {
		interval = defaultSampleInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.SetCurrentDrawA(eks.Read().InputCurrentA)
			i.Discharge(float64(interval.Milliseconds()))
		}
	}
}

// WattHoursConsumed returns the total energy consumed so far. Monotone
// non-decreasing as long as Discharge is only ever called with
// non-negative durations and current draws.
func (i *Integrator) WattHoursConsumed() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.wattHoursConsumed
}

// Discharge integrates the current current draw over durationMs of
// wall-clock time into the watt-hours accumulator.
func (i *Integrator) Discharge(durationMs float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	powerW := i.nominalVoltageV * i.currentDrawA
	hours := (durationMs / 1000.0) / 3600.0
	i.wattHoursConsumed += powerW * hours
}

// CurrentDrawA returns the present modeled current draw, in amps.
func (i *Integrator) CurrentDrawA() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.currentDrawA
}

// SetCurrentDrawA updates the modeled current draw used by subsequent
// Discharge calls.
func (i *Integrator) SetCurrentDrawA(amps float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.currentDrawA = amps
}
