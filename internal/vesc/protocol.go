// Package vesc implements the VESC command-message-processor (CMP) serial
// protocol: a 3-byte packet header (start-of-frame, payload length, command
// ID) followed by a firmware-version-specific payload. Two firmware
// variants are supported, 6.00 and 6.02, each with its own command table.
package vesc

import (
	"math"
	"strconv"
)

// Command identifies a VESC CMP command by its single-byte ID, carried in
// the third byte of every request packet.
type Command byte

var commandNames = map[Command]string{
	CommandFirmware:      "FIRMWARE",
	CommandState:         "STATE",
	CommandSetCurrent:    "CURRENT",
	CommandSetRPM:        "RPM",
	CommandHeartbeat:     "HEARTBEAT",
	CommandIMUState:      "IMU STATE",
	CommandBionicBoarder: "BIONIC BOARDER",
}

// String returns the command's human-readable name, or its raw numeric ID
// if it is not one this simulator recognizes.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "UNKNOWN(" + strconv.Itoa(int(c)) + ")"
}

// Command IDs, as read from the third byte of an incoming request packet.
// These match the VESC bldc firmware's COMM_PACKET_ID enumeration for the
// subset of commands this simulator implements.
const (
	CommandFirmware      Command = 0
	CommandState         Command = 4
	CommandSetCurrent    Command = 6
	CommandSetRPM        Command = 8
	CommandHeartbeat     Command = 30
	CommandIMUState      Command = 65
	CommandBionicBoarder Command = 164
)

// requestByteSize is the fixed length of every inbound request packet this
// CMP reads off the wire: 2-byte start-of-frame + length, 1-byte command
// ID, plus up to 4 payload bytes for the state-change commands. The whole
// fixed-size frame is read in one call regardless of command, since
// message-request commands simply ignore the trailing bytes.
const requestByteSize = 7

// packetHeader builds the 3-byte reply header: a constant start-of-frame
// byte, the payload length, and the command ID being replied to. CRC and
// end-of-frame trailer bytes are the responsibility of the physical
// transport layer, not this simulator.
func packetHeader(id Command, payloadLen int) []byte {
	return []byte{2, byte(payloadLen), byte(id)}
}

// commandFromRequest extracts the command ID from a raw request frame. The
// command ID occupies the third byte of every request, across both
// firmware variants.
func commandFromRequest(req []byte) Command {
	return Command(req[2])
}

// float32ToBytes encodes f as 4 big-endian bytes per the VESC firmware's
// buffer.c convention.
func float32ToBytes(f float32) [4]byte {
	bits := math.Float32bits(f)
	return [4]byte{byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits)}
}
