package recorder

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
)

func TestRecorder_WriteRecordProducesFixedLengthLittleEndianRecord(t *testing.T) {
	dir := t.TempDir()
	eks := kinstate.NewStore()
	eks.Update(func(s *kinstate.State) {
		s.VelocityMps = 3.5
		s.ERPM = 4200
		s.MotorCurrentA = 12.25
	})

	r := New(Config{Enabled: true, Path: dir, IntervalMs: 10}, eks, zap.NewNop().Sugar())
	r.start = time.Now()

	require.NoError(t, r.writeRecord())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Len(t, data, recordByteLength)

	erpm := int32(binary.LittleEndian.Uint32(data[36:40]))
	assert.Equal(t, int32(4200), erpm)

	motorCurrentBits := binary.LittleEndian.Uint32(data[40:44])
	motorCurrent := math.Float32frombits(motorCurrentBits)
	assert.InDelta(t, 12.25, motorCurrent, 1e-4)
}

func TestRecorder_DisabledStartDoesNotCreateFiles(t *testing.T) {
	dir := t.TempDir()
	eks := kinstate.NewStore()
	r := New(Config{Enabled: false, Path: dir, IntervalMs: 10}, eks, zap.NewNop().Sugar())

	r.Start()
	r.Stop()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 0)
}

func TestRecorder_IntervalClampedToMinimum(t *testing.T) {
	eks := kinstate.NewStore()
	r := New(Config{Enabled: true, Path: t.TempDir(), IntervalMs: 1}, eks, zap.NewNop().Sugar())
	assert.GreaterOrEqual(t, r.interval.Milliseconds(), int64(10))
}
