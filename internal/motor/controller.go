// Package motor implements the motor controller: the ERPM ramp task and the
// current-zeroing task that together let a VESC command override the
// kinematic loop's coasting physics.
package motor

import (
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/board"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/physics"
)

const (
	gravityMps2 = 9.81

	// motorEfficiency and controllerEfficiency are estimates applied to the
	// mechanical-to-electrical power conversion when deriving input current,
	// used for any motor/VESC-controller pairing.
	motorEfficiency      = 0.90
	controllerEfficiency = 0.97
)

// Controller drives the board's ERPM towards a target set point on its own
// goroutine, and can be commanded to let the board coast again by zeroing
// input current. Setpoints are coalesced through single-slot signal
// channels plus an atomic flag.
type Controller struct {
	eks    *kinstate.Store
	params board.Params
	fdm    physics.FrictionDragModel
	log    *zap.SugaredLogger

	erpmPerSec        float64
	controlTimeStepMs int

	targetERPM      int64 // atomic
	zeroCurrentFlag atomic.Bool

	erpmSignal    chan struct{}
	currentSignal chan struct{}
	stop          chan struct{}
}

// New builds a Controller for the given board parameters, deriving the
// motor's maximum ERPM/sec acceleration from its torque and the board's
// mass (spec §4.4). fdm is the same friction/drag model the kinematic loop
// uses, so resistive torque at the wheel is computed consistently whether
// the board is coasting or under motor control.
func New(params board.Params, eks *kinstate.Store, controlTimeStepMs int, fdm physics.FrictionDragModel, log *zap.SugaredLogger) *Controller {
	wheelRadiusM := params.WheelRadiusM()
	torqueAtWheelNm := params.MotorMaxTorqueNm * params.GearRatio
	forceAtWheelN := torqueAtWheelNm / wheelRadiusM
	linearAccelMps2 := forceAtWheelN / params.TotalMassKg
	angularAccelWheelRadS2 := linearAccelMps2 / wheelRadiusM
	angularAccelWheelRPMSec := angularAccelWheelRadS2 * (60 / (2 * math.Pi))
	motorAccelRPMSec := angularAccelWheelRPMSec * params.GearRatio
	erpmPerSec := motorAccelRPMSec * float64(params.MotorPolePairs)

	return &Controller{
		eks:               eks,
		params:            params,
		fdm:               fdm,
		log:               log,
		erpmPerSec:        erpmPerSec,
		controlTimeStepMs: controlTimeStepMs,
		erpmSignal:        make(chan struct{}, 1),
		currentSignal:     make(chan struct{}, 1),
		stop:              make(chan struct{}),
	}
}

// ERPMPerSec returns the derived maximum ERPM/sec ramp rate.
func (c *Controller) ERPMPerSec() float64 { return c.erpmPerSec }

// Start launches the controller's two goroutines.
func (c *Controller) Start() {
	go c.erpmControlLoop()
	go c.currentControlLoop()
}

// Stop tears down both goroutines.
func (c *Controller) Stop() {
	close(c.stop)
}

// SetTargetERPM records a new ERPM setpoint and wakes the ramp task. Calls
// coalesce: a setpoint that arrives before the previous one is consumed
// simply replaces it.
func (c *Controller) SetTargetERPM(erpm int) {
	atomic.StoreInt64(&c.targetERPM, int64(erpm))
	select {
	case c.erpmSignal <- struct{}{}:
	default:
	}
}

// ZeroCurrent commands the controller to disengage and let the board coast.
func (c *Controller) ZeroCurrent() {
	select {
	case c.currentSignal <- struct{}{}:
	default:
	}
}

func (c *Controller) erpmControlLoop() {
	stepSec := float64(c.controlTimeStepMs) / 1000.0
	for {
		select {
		case <-c.stop:
			return
		case <-c.erpmSignal:
		}
		c.zeroCurrentFlag.Store(false)

		target := int(atomic.LoadInt64(&c.targetERPM))
		starting := c.eks.Read().ERPM
		if starting == target {
			continue
		}

		erpmStep := math.Max(1, math.Round(c.erpmPerSec*stepSec))
		if starting >= target {
			erpmStep = -erpmStep
		}
		last := float64(starting)
		previousVelocityMps := c.eks.Read().VelocityMps

		for (erpmStep > 0) == (last < float64(target)) {
			select {
			case <-c.stop:
				return
			default:
			}

			spinUntil := time.Now().Add(time.Duration(stepSec * float64(time.Second)))
			for time.Now().Before(spinUntil) {
			}

			c.eks.Update(func(s *kinstate.State) {
				s.ERPM += int(erpmStep)
				wheelRadiusM := c.params.WheelDiameterM / 2
				s.VelocityMps = ((float64(s.ERPM) / float64(c.params.MotorPolePairs)) / c.params.GearRatio) *
					((math.Pi * c.params.WheelDiameterM) / 60)

				mechanicalRPM := float64(s.ERPM) / float64(c.params.MotorPolePairs)
				mechanicalRadPerSec := (mechanicalRPM * 2 * math.Pi) / 60
				wheelSpeedMps := (mechanicalRadPerSec / c.params.GearRatio) * wheelRadiusM

				frictionAccelMps2, _ := c.fdm.Decelerate(wheelSpeedMps, float64(c.controlTimeStepMs))
				totalResistiveForceN := frictionAccelMps2 * c.params.TotalMassKg
				wheelTorqueNm := totalResistiveForceN * wheelRadiusM
				motorTorqueNm := wheelTorqueNm / c.params.GearRatio

				motorKt := c.params.MotorKt()
				s.MotorCurrentA = motorTorqueNm / motorKt

				mechanicalPowerW := motorTorqueNm * mechanicalRadPerSec
				s.InputCurrentA = mechanicalPowerW / (c.params.BatteryNominalVoltageV * motorEfficiency * controllerEfficiency)

				s.AccelerationXMps2 = (s.VelocityMps-previousVelocityMps)/stepSec - frictionAccelMps2
				previousVelocityMps = s.VelocityMps
			})

			last += erpmStep
			if newTarget := int(atomic.LoadInt64(&c.targetERPM)); newTarget != target {
				target = newTarget
				if last >= float64(target) {
					erpmStep = -math.Abs(erpmStep)
				} else {
					erpmStep = math.Abs(erpmStep)
				}
			}

			if c.zeroCurrentFlag.Load() {
				c.eks.Update(func(s *kinstate.State) {
					s.MotorCurrentA = 0.0
					s.InputCurrentA = 0.0
				})
				break
			}
		}
	}
}

// currentControlLoop only ever zeroes current: there is no other supported
// current control scheme today.
func (c *Controller) currentControlLoop() {
	for {
		select {
		case <-c.stop:
			return
		case <-c.currentSignal:
			c.zeroCurrentFlag.Store(true)
			c.eks.Update(func(s *kinstate.State) {
				s.MotorCurrentA = 0.0
				s.InputCurrentA = 0.0
			})
			c.log.Debugw("motor current zeroed, board returned to coast")
		}
	}
}
