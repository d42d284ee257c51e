package vesc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_StringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "STATE", CommandState.String())
	assert.Equal(t, "BIONIC BOARDER", CommandBionicBoarder.String())
	assert.Equal(t, "UNKNOWN(99)", Command(99).String())
}

func TestPacketHeader(t *testing.T) {
	got := packetHeader(CommandState, 74)
	assert.Equal(t, []byte{2, 74, byte(CommandState)}, got)
}

func TestCommandFromRequest(t *testing.T) {
	req := []byte{2, 0, byte(CommandSetRPM), 0, 0, 0, 0}
	assert.Equal(t, CommandSetRPM, commandFromRequest(req))
}

func TestFloat32ToBytes(t *testing.T) {
	tests := []struct {
		name string
		in   float32
	}{
		{"zero", 0},
		{"one", 1},
		{"negative", -12.5},
		{"large", 123456.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := float32ToBytes(tt.in)
			wantBits := math.Float32bits(tt.in)
			gotBits := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
			assert.Equal(t, wantBits, gotBits)
		})
	}
}

func TestRequestByteSizeMatchesHeaderPlusPayload(t *testing.T) {
	assert.Equal(t, 7, requestByteSize)
}
