package vesc

import (
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/battery"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/board"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/motor"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/simerrors"
)

// Transport is the byte-stream this CMP reads requests from and writes
// replies to. go.bug.st/serial's Port satisfies this directly.
type Transport interface {
	io.Reader
	io.Writer
}

// CMP is the command-message-processor: it continuously reads fixed-size
// request frames off a Transport, dispatches on the embedded command ID,
// and writes the firmware-variant-specific reply. One CMP instance speaks
// exactly one firmware variant (6.00 or 6.02).
type CMP struct {
	variant FirmwareVariant
	xport   Transport
	eks     *kinstate.Store
	params  board.Params
	bat     *battery.Integrator
	mc      *motor.Controller
	log     *zap.SugaredLogger

	watchdog *heartbeatWatchdog

	writeMu sync.Mutex
}

// New constructs a CMP for the given firmware variant, wired to the
// simulator's shared kinematic state, board parameters, battery
// integrator, and motor controller.
func New(variant FirmwareVariant, xport Transport, eks *kinstate.Store, params board.Params, bat *battery.Integrator, mc *motor.Controller, log *zap.SugaredLogger) *CMP {
	return &CMP{
		variant:  variant,
		xport:    xport,
		eks:      eks,
		params:   params,
		bat:      bat,
		mc:       mc,
		log:      log,
		watchdog: newHeartbeatWatchdog(log),
	}
}

// Run reads and dispatches requests until the Transport returns an error
// (typically because the connection was closed). Matches the reference
// model's handle_command: an unrecognized or malformed request is logged
// and the loop continues.
func (c *CMP) Run() error {
	req := make([]byte, requestByteSize)
	for {
		if _, err := io.ReadFull(c.xport, req); err != nil {
			return simerrors.NewTransportError("vesc cmp read", err)
		}

		cmd := commandFromRequest(req)
		if err := c.dispatch(cmd, req); err != nil {
			c.log.Errorw("received command was not processed correctly", "command", cmd, "error", err)
		}
	}
}

func (c *CMP) dispatch(cmd Command, req []byte) error {
	switch cmd {
	case CommandState:
		c.log.Infow("VESC received command", "command", "STATE")
		return c.publishState()
	case CommandBionicBoarder:
		if c.variant != FW602 {
			return simerrors.NewProtocolError(cmd.String(), nil)
		}
		c.log.Infow("VESC received command", "command", "BIONIC BOARDER")
		return c.publishBionicBoarder()
	case CommandIMUState:
		if c.variant != FW600 {
			return simerrors.NewProtocolError(cmd.String(), nil)
		}
		c.log.Infow("VESC received command", "command", "IMU STATE")
		return c.publishIMUState()
	case CommandFirmware:
		c.log.Infow("VESC received command", "command", "FIRMWARE")
		return c.publishFirmware()
	case CommandSetCurrent:
		c.log.Infow("VESC received command", "command", "CURRENT")
		return c.updateCurrent(req)
	case CommandSetRPM:
		c.log.Infow("VESC received command", "command", "RPM")
		return c.updateRPM(req)
	case CommandHeartbeat:
		c.watchdog.Kick()
		return nil
	default:
		return simerrors.NewProtocolError(cmd.String(), nil)
	}
}

func (c *CMP) write(id Command, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	packet := append(packetHeader(id, len(payload)), payload...)
	_, err := c.xport.Write(packet)
	return err
}

func (c *CMP) publishFirmware() error {
	return c.write(CommandFirmware, firmwareMessage(c.variant))
}

func (c *CMP) publishState() error {
	s := c.eks.Read()
	snap := StateSnapshot{
		MotorCurrentA: s.MotorCurrentA,
		InputCurrentA: s.InputCurrentA,
		VinV:          c.params.BatteryNominalVoltageV,
		ERPM:          s.ERPM,
		WattHours:     c.bat.WattHoursConsumed(),
	}
	c.log.Infow("publishing state message", "rpm", snap.ERPM, "motor_current", snap.MotorCurrentA, "watt_hours", snap.WattHours)
	return c.write(CommandState, stateMessage(c.variant, snap))
}

func (c *CMP) publishIMUState() error {
	s := c.eks.Read()
	snap := IMUSnapshot{
		AccelXMps2: s.AccelerationXMps2,
		PitchRad:   degToRad(s.PitchDeg),
	}
	c.log.Infow("publishing IMU state message", "imu_acc", snap.AccelXMps2, "imu_pitch_rad", snap.PitchRad)
	return c.write(CommandIMUState, imuStateMessage(snap))
}

func (c *CMP) publishBionicBoarder() error {
	s := c.eks.Read()
	snap := BionicBoarderSnapshot{
		MotorCurrentA: s.MotorCurrentA,
		ERPM:          s.ERPM,
		AccelXMps2:    s.AccelerationXMps2,
		PitchRad:      degToRad(s.PitchDeg),
	}
	c.log.Infow("publishing bionic boarder message", "motor_current", snap.MotorCurrentA, "rpm", snap.ERPM)
	return c.write(CommandBionicBoarder, bionicBoarderMessage(snap))
}

func (c *CMP) updateCurrent(req []byte) error {
	commandedA := float64(decodeSignedInt32BigEndian(req)) / 1000.0
	c.log.Infow("processing set current command", "motor_current", commandedA)
	if commandedA == 0.0 {
		c.mc.ZeroCurrent()
		return nil
	}
	// The motor controller supports only a zero current setpoint; a nonzero
	// request is not forwarded and is returned as an InvariantViolation, which
	// Run logs before reading the next request.
	return simerrors.NewInvariantViolation("only a zero target current is supported, got %v A", commandedA)
}

func (c *CMP) updateRPM(req []byte) error {
	commandedERPM := int(decodeSignedInt32BigEndian(req))
	c.log.Infow("processing set ERPM command", "erpm", commandedERPM)
	c.mc.SetTargetERPM(commandedERPM)
	return nil
}

func degToRad(deg float64) float64 {
	const piOver180 = 3.141592653589793 / 180.0
	return deg * piOver180
}
