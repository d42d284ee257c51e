// Package kinstate owns the electric-board kinematic state (EKS): the
// mutable, shared snapshot of the board's speed, attitude, and motor
// electrical state. Every read and write goes through Store so that the
// single coarse mutex and the motor-override rule are enforced structurally
// instead of by convention at each call site.
package kinstate

import "sync"

// State is the kinematic state of the eboard, expressed in the board's own
// body coordinate frame: x along the long axis, y along the width, z along
// the height. Velocity is signed speed along the x-axis.
type State struct {
	VelocityMps float64

	AccelerationXMps2 float64
	AccelerationYMps2 float64
	AccelerationZMps2 float64

	PitchDeg float64
	RollDeg  float64
	YawDeg   float64

	ERPM int

	MotorCurrentA float64
	InputCurrentA float64
}

// Store guards a State behind a single mutex. All CORE components — the
// kinematic loop, the motor controller, and the VESC CMP — read and write
// through this type exclusively.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore returns a Store initialized to the zero state (board at rest).
func NewStore() *Store {
	return &Store{}
}

// Read returns a copy of the current state. Safe for concurrent use.
func (s *Store) Read() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update runs fn with exclusive access to the state, so a caller can read
// and write several fields atomically within one lock acquisition. fn must
// not block or re-enter the Store.
func (s *Store) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// MotorDriving reports whether the motor controller currently owns the
// board's kinematics: the kinematic loop must not advance physics while
// this is true.
func (s *Store) MotorDriving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.InputCurrentA > 0
}
