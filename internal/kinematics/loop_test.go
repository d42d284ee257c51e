package kinematics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/physics"
)

func testConfig() Config {
	return Config{
		FixedStepMs:         20,
		PushPeriodSec:       1000, // effectively disabled for these tests
		ThetaSlopePeriodSec: 1000, // effectively disabled for these tests
		SlopeRangeBoundDeg:  8.0,
		InitialSlopeDeg:     0.0,
		TotalMassKg:         90.0,
		GearRatio:           3.0,
		WheelDiameterM:      0.1,
		MotorPolePairs:      7,
	}
}

func newTestLoop() (*Loop, *kinstate.Store) {
	eks := kinstate.NewStore()
	fdm := physics.NewFrictionDragModel(0.02, 0.6, 0.6, 90.0)
	pm := physics.NewPushModel(90.0)
	log := zap.NewNop().Sugar()
	return New(testConfig(), eks, fdm, pm, log), eks
}

func TestLoop_TickDeceleratesTowardZero(t *testing.T) {
	l, eks := newTestLoop()
	eks.Update(func(s *kinstate.State) { s.VelocityMps = 5.0 })

	l.tick()

	assert.Less(t, eks.Read().VelocityMps, 5.0)
	assert.GreaterOrEqual(t, eks.Read().VelocityMps, 0.0)
}

func TestLoop_TickNeverCrossesZeroFromPositive(t *testing.T) {
	l, eks := newTestLoop()
	eks.Update(func(s *kinstate.State) { s.VelocityMps = 0.001 })

	for i := 0; i < 5; i++ {
		l.tick()
	}

	assert.GreaterOrEqual(t, eks.Read().VelocityMps, 0.0)
}

func TestLoop_TickRecomputesERPMFromVelocity(t *testing.T) {
	l, eks := newTestLoop()
	eks.Update(func(s *kinstate.State) { s.VelocityMps = 3.0 })

	l.tick()

	v := eks.Read().VelocityMps
	wheelRPM := (v / (l.cfg.WheelDiameterM * 3.141592653589793)) * 60
	motorRPM := wheelRPM * l.cfg.GearRatio
	wantERPM := int(float64(l.cfg.MotorPolePairs) * motorRPM)

	assert.Equal(t, wantERPM, eks.Read().ERPM)
}

func TestLoop_RunStepsAsideWhileMotorDriving(t *testing.T) {
	l, eks := newTestLoop()
	eks.Update(func(s *kinstate.State) {
		s.InputCurrentA = 5.0
		s.VelocityMps = 10.0
	})

	go l.Run()
	time.Sleep(60 * time.Millisecond)
	l.Stop()
	time.Sleep(40 * time.Millisecond)

	// The motor controller owns kinematics while driving: the coasting
	// loop must not have touched velocity.
	assert.Equal(t, 10.0, eks.Read().VelocityMps)
}

func TestLoop_RunDeceleratesWhileCoasting(t *testing.T) {
	l, eks := newTestLoop()
	eks.Update(func(s *kinstate.State) { s.VelocityMps = 5.0 })

	go l.Run()
	time.Sleep(100 * time.Millisecond)
	l.Stop()
	time.Sleep(40 * time.Millisecond)

	assert.Less(t, eks.Read().VelocityMps, 5.0)
}
