package vesc

import "encoding/binary"

// FirmwareVariant selects which firmware's wire formats a CMP speaks.
type FirmwareVariant int

const (
	FW600 FirmwareVariant = iota
	FW602
)

// firmwareMessage builds the COMM_FW_VERSION reply buffer for the given
// variant. Byte layout matches fw_6_00.FirmwareMessage / fw_6_02.FirmwareMessage.
func firmwareMessage(variant FirmwareVariant) []byte {
	switch variant {
	case FW602:
		buf := make([]byte, 64)
		buf[0] = 6
		buf[1] = 0x02
		copy(buf[2:14], "HardwareName")
		return buf
	default:
		buf := make([]byte, 64)
		buf[0] = 6
		buf[1] = 0
		copy(buf[2:14], "HardwareName")
		return buf
	}
}

// StateSnapshot is the subset of simulator state needed to serialize a
// COMM_GET_VALUES reply.
type StateSnapshot struct {
	MotorCurrentA float64
	InputCurrentA float64
	VinV          float64
	ERPM          int
	WattHours     float64
}

// stateMessage encodes the 74-byte COMM_GET_VALUES reply. The 6.00 variant
// only ever populates motor current, RPM, and watt-hours; the 6.02 variant
// additionally reports average input current and input voltage, sourced
// from live input current and the board's nominal battery voltage.
func stateMessage(variant FirmwareVariant, s StateSnapshot) []byte {
	buf := make([]byte, 74)
	switch variant {
	case FW602:
		binary.BigEndian.PutUint32(buf[4:8], uint32(int32(s.MotorCurrentA*1e2)))
		binary.BigEndian.PutUint32(buf[8:12], uint32(int32(s.InputCurrentA*1e2)))
		binary.BigEndian.PutUint32(buf[22:26], uint32(int32(s.ERPM)))
		binary.BigEndian.PutUint16(buf[26:28], uint16(int16(s.VinV*10)))
		binary.BigEndian.PutUint32(buf[36:40], uint32(int32(s.WattHours*1e4)))
	default:
		binary.BigEndian.PutUint32(buf[4:8], uint32(int32(s.MotorCurrentA*1e2)))
		binary.BigEndian.PutUint32(buf[22:26], uint32(int32(s.ERPM)))
		binary.BigEndian.PutUint32(buf[36:40], uint32(int32(s.WattHours*1e4)))
	}
	return buf
}

// IMUSnapshot is the subset of simulator state needed to serialize a
// COMM_GET_IMU_DATA reply (6.00 only).
type IMUSnapshot struct {
	AccelXMps2 float64
	PitchRad   float64
}

// imuStateMessage encodes the 68-byte COMM_GET_IMU_DATA reply. Only
// acc[0] and rpy[1] (pitch) are populated; gyro, mag, and quaternion
// fields are left zero since this simulator does not model those sensors.
func imuStateMessage(s IMUSnapshot) []byte {
	buf := make([]byte, 68)
	b := float32ToBytes(float32(s.PitchRad))
	copy(buf[6:10], b[:])
	b = float32ToBytes(float32(s.AccelXMps2))
	copy(buf[14:18], b[:])
	return buf
}

// BionicBoarderSnapshot is the subset of simulator state needed to
// serialize a COMM_BIONIC_BOARDER_DATA reply (6.02 only).
type BionicBoarderSnapshot struct {
	MotorCurrentA float64
	DutyCycle     float64
	ERPM          int
	AccelXMps2    float64
	PitchRad      float64
}

// bionicBoarderMessage encodes the 34-byte simulator-only telemetry
// message that reports motor dynamics and a slice of IMU state together.
func bionicBoarderMessage(s BionicBoarderSnapshot) []byte {
	buf := make([]byte, 34)
	binary.BigEndian.PutUint32(buf[0:4], uint32(int32(s.MotorCurrentA*100.0)))
	binary.BigEndian.PutUint16(buf[4:6], uint16(int16(s.DutyCycle*1000.0)))
	binary.BigEndian.PutUint32(buf[6:10], uint32(int32(s.ERPM)))
	b := float32ToBytes(float32(s.AccelXMps2))
	copy(buf[10:14], b[:])
	b = float32ToBytes(float32(s.PitchRad))
	copy(buf[26:30], b[:])
	return buf
}

// ConfigSnapshot is the subset of board.Params needed to serialize a
// COMM_GET_MCCONF reply.
type ConfigSnapshot struct {
	MotorMaxAmps           float64
	BatteryNominalVoltageV float64
	MotorMaxPowerW         float64
	MotorKt                float64
	MotorPolePairs         int
	GearRatio              float64
	WheelDiameterM         float64
	BatteryCapacityAh      float64
}

// motorControllerConfigurationMessageByteLength is the fixed size of a
// COMM_GET_MCCONF reply.
const motorControllerConfigurationMessageByteLength = 697

// motorControllerConfigurationMessage encodes the 697-byte COMM_GET_MCCONF
// reply at its known field offsets: l_current_max@0, l_max_vin@44,
// l_watt_max@85, foc_motor_flux_linkage@222, si_motor_poles@644 (uint8),
// si_gear_ratio@645, si_wheel_diameter@649, si_battery_ah@661.
func motorControllerConfigurationMessage(s ConfigSnapshot) []byte {
	buf := make([]byte, motorControllerConfigurationMessageByteLength)

	b := float32ToBytes(float32(s.MotorMaxAmps))
	copy(buf[0:4], b[:])

	b = float32ToBytes(float32(s.BatteryNominalVoltageV))
	copy(buf[44:48], b[:])

	b = float32ToBytes(float32(s.MotorMaxPowerW))
	copy(buf[85:89], b[:])

	b = float32ToBytes(float32(s.MotorKt))
	copy(buf[222:226], b[:])

	buf[644] = byte(s.MotorPolePairs)

	b = float32ToBytes(float32(s.GearRatio))
	copy(buf[645:649], b[:])

	b = float32ToBytes(float32(s.WheelDiameterM))
	copy(buf[649:653], b[:])

	b = float32ToBytes(float32(s.BatteryCapacityAh))
	copy(buf[661:665], b[:])

	return buf
}

// decodeSignedInt32BigEndian reads the 4-byte big-endian signed integer
// carried in bytes [3:7] of a set-current/set-rpm request, matching every
// CMP's `int.from_bytes(command[3:7], byteorder="big")`.
func decodeSignedInt32BigEndian(req []byte) int32 {
	return int32(binary.BigEndian.Uint32(req[3:7]))
}
