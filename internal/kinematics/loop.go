// Package kinematics implements the fixed-step kinematic loop that advances
// the eboard's coasting physics — friction, drag, a random slope, and
// stochastic rider pushes — whenever the motor controller is not actively
// driving the board.
package kinematics

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/physics"
)

const gravityMps2 = 9.81

// Config holds the tunables for one Loop instance, sourced from the
// simulator's top-level configuration.
type Config struct {
	FixedStepMs         int
	PushPeriodSec       float64
	ThetaSlopePeriodSec float64
	SlopeRangeBoundDeg  float64
	InitialSlopeDeg     float64
	TotalMassKg         float64
	GearRatio           float64
	WheelDiameterM      float64
	MotorPolePairs      int
}

// Loop is the kinematic integrator described in spec §4.3. It runs on its
// own goroutine via Run, and is stopped cooperatively via Stop.
type Loop struct {
	cfg Config
	eks *kinstate.Store
	fdm physics.FrictionDragModel
	pm  *physics.PushModel
	log *zap.SugaredLogger

	stopped atomic.Bool

	currentSlopeDeg float64
	rng             *rand.Rand
}

// New builds a Loop over the given shared kinematic state, friction/drag
// model, and push model.
func New(cfg Config, eks *kinstate.Store, fdm physics.FrictionDragModel, pm *physics.PushModel, log *zap.SugaredLogger) *Loop {
	return &Loop{
		cfg:             cfg,
		eks:             eks,
		fdm:             fdm,
		pm:              pm,
		log:             log,
		currentSlopeDeg: cfg.InitialSlopeDeg,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Stop requests the loop to exit after its current tick.
func (l *Loop) Stop() {
	l.stopped.Store(true)
}

// Run executes the fixed-step tick loop until Stop is called. It is meant
// to be launched on its own goroutine.
func (l *Loop) Run() {
	step := time.Duration(l.cfg.FixedStepMs) * time.Millisecond
	thetaElapsed := 0.0
	pushElapsed := 0.0

	for !l.stopped.Load() {
		if l.eks.MotorDriving() {
			// The motor controller owns the board's kinematics this step.
			time.Sleep(step)
			continue
		}

		start := time.Now()

		thetaElapsed += float64(l.cfg.FixedStepMs) / 1000.0
		if thetaElapsed >= l.cfg.ThetaSlopePeriodSec {
			if l.currentSlopeDeg == 0.0 {
				l.currentSlopeDeg = l.rng.Float64()*2*l.cfg.SlopeRangeBoundDeg - l.cfg.SlopeRangeBoundDeg
			} else {
				l.currentSlopeDeg = 0.0
			}
			thetaElapsed = 0
			l.eks.Update(func(s *kinstate.State) { s.PitchDeg = l.currentSlopeDeg })
			l.log.Debugw("slope changed", "slope_deg", l.currentSlopeDeg)
		}

		pushElapsed += float64(l.cfg.FixedStepMs) / 1000.0
		if pushElapsed >= l.cfg.PushPeriodSec && !l.pm.Active() {
			force1gN := l.cfg.TotalMassKg * gravityMps2
			forceN := force1gN + l.rng.Float64()*force1gN
			durationMs := float64(400 + l.rng.Intn(201))
			l.pm.Setup(forceN, durationMs)
			pushElapsed = 0
			l.log.Debugw("push armed", "force_n", forceN, "duration_ms", durationMs)
		}

		l.tick()

		if l.stopped.Load() {
			break
		}
		elapsed := time.Since(start)
		if sleep := step - elapsed; sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// tick applies one fixed step of friction, gravity-on-slope, and any active
// push to the shared kinematic state, then recomputes ERPM from velocity.
func (l *Loop) tick() {
	l.eks.Update(func(s *kinstate.State) {
		accelF, deltaVF := l.fdm.Decelerate(math.Abs(s.VelocityMps), float64(l.cfg.FixedStepMs))
		if s.VelocityMps < 0.0 {
			next := s.VelocityMps + deltaVF
			if next > 0 {
				next = 0
			}
			s.VelocityMps = next
			s.AccelerationXMps2 = accelF
		} else {
			next := s.VelocityMps - deltaVF
			if next < 0 {
				next = 0
			}
			s.VelocityMps = next
			s.AccelerationXMps2 = -accelF
		}

		accelGravity := gravityMps2 * math.Sin(math.Abs(l.currentSlopeDeg)*math.Pi/180.0)
		deltaVGravity := accelGravity * float64(l.cfg.FixedStepMs) / 1000.0
		if l.currentSlopeDeg >= 0.0 {
			s.VelocityMps -= deltaVGravity
			s.AccelerationXMps2 -= accelGravity
		} else {
			s.VelocityMps += deltaVGravity
			s.AccelerationXMps2 += accelGravity
		}

		if l.pm.Active() {
			accelPush, deltaVPush := l.pm.Step(float64(l.cfg.FixedStepMs))
			s.AccelerationXMps2 += accelPush
			s.VelocityMps += deltaVPush
		}

		wheelRPM := (s.VelocityMps / (l.cfg.WheelDiameterM * math.Pi)) * 60
		motorRPM := wheelRPM * l.cfg.GearRatio
		s.ERPM = int(float64(l.cfg.MotorPolePairs) * motorRPM)
	})
}
