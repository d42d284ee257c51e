// Package recorder implements the binary trajectory recorder: a
// straightforward periodic serializer that appends one fixed-size, packed
// binary record of the kinematic state to a rotating file.
package recorder

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
)

const (
	maxRecordsPerFile = 200_000
	recordByteLength  = 44 // 1 float64 + 7 float32 + 1 int32 + 1 float32
)

// Recorder appends timestamped kinematic-state snapshots to a rotating
// binary file on its own goroutine.
type Recorder struct {
	mu       sync.Mutex
	dir      string
	interval time.Duration
	enabled  bool
	eks      *kinstate.Store
	start    time.Time
	log      *zap.SugaredLogger

	file    *os.File
	records int

	stop chan struct{}
}

// Config holds recorder configuration.
type Config struct {
	Enabled    bool
	Path       string
	IntervalMs int
}

// New creates a Recorder over the given shared kinematic state.
func New(cfg Config, eks *kinstate.Store, log *zap.SugaredLogger) *Recorder {
	interval := time.Duration(cfg.IntervalMs) * time.Millisecond
	if interval < 10*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	return &Recorder{
		dir:      cfg.Path,
		interval: interval,
		enabled:  cfg.Enabled,
		eks:      eks,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Start launches the recording goroutine if the recorder is enabled.
func (r *Recorder) Start() {
	if !r.enabled {
		return
	}
	r.start = time.Now()
	go r.run()
}

// Stop halts recording and flushes the current file.
func (r *Recorder) Stop() {
	close(r.stop)
}

func (r *Recorder) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer r.closeFile()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if err := r.writeRecord(); err != nil {
				r.log.Errorw("recorder write failed", "error", err)
			}
		}
	}
}

func (r *Recorder) writeRecord() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil || r.records >= maxRecordsPerFile {
		if err := r.rotateFile(); err != nil {
			return err
		}
	}

	s := r.eks.Read()
	elapsedSec := time.Since(r.start).Seconds()

	buf := make([]byte, recordByteLength)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(elapsedSec))
	putFloat32(buf[8:12], s.VelocityMps)
	putFloat32(buf[12:16], s.AccelerationXMps2)
	putFloat32(buf[16:20], s.AccelerationYMps2)
	putFloat32(buf[20:24], s.AccelerationZMps2)
	putFloat32(buf[24:28], s.PitchDeg)
	putFloat32(buf[28:32], s.RollDeg)
	putFloat32(buf[32:36], s.YawDeg)
	binary.LittleEndian.PutUint32(buf[36:40], uint32(int32(s.ERPM)))
	putFloat32(buf[40:44], s.MotorCurrentA)

	if _, err := r.file.Write(buf); err != nil {
		return err
	}
	r.records++
	return nil
}

func (r *Recorder) rotateFile() error {
	r.closeFile()

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", r.dir, err)
	}

	filename := fmt.Sprintf("sim_data_recording_%s.bin", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(r.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	r.file = f
	r.records = 0
	r.log.Infow("recorder opened file", "path", path)
	return nil
}

func (r *Recorder) closeFile() {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
}

func putFloat32(buf []byte, v float64) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
}
