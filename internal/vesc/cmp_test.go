package vesc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/battery"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/board"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/motor"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/physics"
)

type fakeTransport struct {
	bytes.Buffer
}

func newTestCMP(t *testing.T, variant FirmwareVariant) (*CMP, *fakeTransport) {
	t.Helper()
	log := zap.NewNop().Sugar()
	eks := kinstate.NewStore()
	bat := battery.NewIntegrator(42.0)
	params := board.Params{
		TotalMassKg: 90, FrontalAreaM2: 0.6, WheelDiameterM: 0.1,
		BatteryCapacityAh: 10, BatteryNominalVoltageV: 42, GearRatio: 3,
		MotorKvRPMPerV: 220, MotorMaxTorqueNm: 4.5, MotorMaxAmps: 60,
		MotorMaxPowerW: 2000, MotorPolePairs: 7,
	}
	fdm := physics.NewFrictionDragModel(0.02, 0.5, params.FrontalAreaM2, params.TotalMassKg)
	mc := motor.New(params, eks, 20, fdm, log)
	xport := &fakeTransport{}
	cmp := New(variant, xport, eks, params, bat, mc, log)
	return cmp, xport
}

func requestFrame(cmd Command, payload int32) []byte {
	req := make([]byte, requestByteSize)
	req[0] = 2
	req[2] = byte(cmd)
	binary.BigEndian.PutUint32(req[3:7], uint32(payload))
	return req
}

func TestCMP_DispatchState(t *testing.T) {
	cmp, xport := newTestCMP(t, FW602)
	err := cmp.dispatch(CommandState, requestFrame(CommandState, 0))
	require.NoError(t, err)
	assert.True(t, xport.Len() > 0)
	assert.Equal(t, byte(2), xport.Bytes()[0])
	assert.Equal(t, byte(CommandState), xport.Bytes()[2])
}

func TestCMP_DispatchFirmware(t *testing.T) {
	cmp, xport := newTestCMP(t, FW600)
	err := cmp.dispatch(CommandFirmware, requestFrame(CommandFirmware, 0))
	require.NoError(t, err)
	assert.Equal(t, byte(CommandFirmware), xport.Bytes()[2])
}

func TestCMP_BionicBoarderGatedToFW602(t *testing.T) {
	cmp602, _ := newTestCMP(t, FW602)
	assert.NoError(t, cmp602.dispatch(CommandBionicBoarder, requestFrame(CommandBionicBoarder, 0)))

	cmp600, _ := newTestCMP(t, FW600)
	err := cmp600.dispatch(CommandBionicBoarder, requestFrame(CommandBionicBoarder, 0))
	assert.Error(t, err)
}

func TestCMP_IMUStateGatedToFW600(t *testing.T) {
	cmp600, _ := newTestCMP(t, FW600)
	assert.NoError(t, cmp600.dispatch(CommandIMUState, requestFrame(CommandIMUState, 0)))

	cmp602, _ := newTestCMP(t, FW602)
	err := cmp602.dispatch(CommandIMUState, requestFrame(CommandIMUState, 0))
	assert.Error(t, err)
}

func TestCMP_DispatchUnknownCommandReturnsProtocolError(t *testing.T) {
	cmp, _ := newTestCMP(t, FW602)
	err := cmp.dispatch(Command(250), requestFrame(Command(250), 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN(250)")
}

func TestCMP_UpdateCurrentZeroSucceeds(t *testing.T) {
	cmp, _ := newTestCMP(t, FW602)
	err := cmp.dispatch(CommandSetCurrent, requestFrame(CommandSetCurrent, 0))
	assert.NoError(t, err)
}

func TestCMP_UpdateCurrentNonZeroRejected(t *testing.T) {
	cmp, _ := newTestCMP(t, FW602)
	err := cmp.dispatch(CommandSetCurrent, requestFrame(CommandSetCurrent, 5000))
	assert.Error(t, err)
}

func TestCMP_UpdateRPMAccepted(t *testing.T) {
	cmp, _ := newTestCMP(t, FW602)
	err := cmp.dispatch(CommandSetRPM, requestFrame(CommandSetRPM, 1000))
	assert.NoError(t, err)
}

func TestCMP_HeartbeatAccepted(t *testing.T) {
	cmp, _ := newTestCMP(t, FW602)
	err := cmp.dispatch(CommandHeartbeat, requestFrame(CommandHeartbeat, 0))
	assert.NoError(t, err)
}
