// Package config loads and validates the simulator's top-level
// configuration: the board's physical parameters, the serial transport to
// expose the VESC CMP on, the fixed-step timing for the kinematic and
// motor control loops, and the ambient recorder/monitor settings.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/board"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/simerrors"
)

// Config is the simulator's complete runtime configuration.
type Config struct {
	Board   board.Params  `yaml:"board" json:"board"`
	Serial  SerialConfig  `yaml:"serial" json:"serial"`
	Sim     SimConfig     `yaml:"sim" json:"sim"`
	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`
	Record  RecordConfig  `yaml:"record" json:"record"`

	path string
}

// SerialConfig describes the 8-N-1 byte stream the VESC CMP listens on.
type SerialConfig struct {
	PortPath string `yaml:"port_path" json:"portPath"`
	BaudRate int    `yaml:"baud_rate" json:"baudRate"`
	Firmware string `yaml:"firmware" json:"firmware"` // "6.00" or "6.02"
}

// SimConfig holds the fixed-step timing and stochastic-process tunables
// for the kinematic loop and motor controller.
type SimConfig struct {
	FixedStepMs         int     `yaml:"fixed_step_ms" json:"fixedStepMs"`
	ControlTimeStepMs   int     `yaml:"control_time_step_ms" json:"controlTimeStepMs"`
	PushPeriodSec       float64 `yaml:"push_period_sec" json:"pushPeriodSec"`
	ThetaSlopePeriodSec float64 `yaml:"theta_slope_period_sec" json:"thetaSlopePeriodSec"`
	SlopeRangeBoundDeg  float64 `yaml:"slope_range_bound_deg" json:"slopeRangeBoundDeg"`
	InitialSlopeDeg     float64 `yaml:"initial_slope_deg" json:"initialSlopeDeg"`
	MuRolling           float64 `yaml:"mu_rolling" json:"muRolling"`
	CDrag               float64 `yaml:"c_drag" json:"cDrag"`
}

// MonitorConfig controls the read-only WebSocket telemetry mirror.
type MonitorConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listen_addr" json:"listenAddr"`
}

// RecordConfig controls the binary trajectory recorder.
type RecordConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	Path       string `yaml:"path" json:"path"`
	IntervalMs int    `yaml:"interval_ms" json:"intervalMs"`
}

// DefaultConfig returns a config with sensible defaults for a 2-wheel
// electric land-paddle skateboard.
func DefaultConfig() *Config {
	return &Config{
		Board: board.Params{
			TotalMassKg:            90.0,
			FrontalAreaM2:          0.6,
			WheelDiameterM:         0.1,
			BatteryCapacityAh:      10.0,
			BatteryNominalVoltageV: 42.0,
			GearRatio:              3.0,
			MotorKvRPMPerV:         220.0,
			MotorMaxTorqueNm:       4.5,
			MotorMaxAmps:           60.0,
			MotorMaxPowerW:         2000.0,
			MotorPolePairs:         7,
		},
		Serial: SerialConfig{
			PortPath: "/dev/ttyVESC",
			BaudRate: 115200,
			Firmware: "6.02",
		},
		Sim: SimConfig{
			FixedStepMs:         20,
			ControlTimeStepMs:   5,
			PushPeriodSec:       6.0,
			ThetaSlopePeriodSec: 10.0,
			SlopeRangeBoundDeg:  8.0,
			InitialSlopeDeg:     0.0,
			MuRolling:           0.02,
			CDrag:               0.6,
		},
		Monitor: MonitorConfig{
			Enabled:    true,
			ListenAddr: ":8090",
		},
		Record: RecordConfig{
			Enabled:    false,
			Path:       "/var/log/eboardsim",
			IntervalMs: 50,
		},
	}
}

// Load reads config from a YAML file, applies environment variable
// overrides, validates it, and returns the result. Falls back to defaults
// if the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return applyOverridesAndValidate(cfg)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, simerrors.NewConfigError("parsing %s: %v", path, err)
	}
	cfg.path = path
	return applyOverridesAndValidate(cfg)
}

func applyOverridesAndValidate(cfg *Config) (*Config, error) {
	cfg.applyEnvOverrides()
	if err := cfg.Board.Validate(); err != nil {
		return nil, err
	}
	if cfg.Sim.FixedStepMs <= 0 {
		return nil, simerrors.NewConfigError("sim.fixed_step_ms must be > 0, got %d", cfg.Sim.FixedStepMs)
	}
	if cfg.Sim.ControlTimeStepMs <= 0 {
		return nil, simerrors.NewConfigError("sim.control_time_step_ms must be > 0, got %d", cfg.Sim.ControlTimeStepMs)
	}
	if cfg.Serial.Firmware != "6.00" && cfg.Serial.Firmware != "6.02" {
		return nil, simerrors.NewConfigError("serial.firmware must be \"6.00\" or \"6.02\", got %q", cfg.Serial.Firmware)
	}
	return cfg, nil
}

// applyEnvOverrides reads environment variables and overrides config
// values. Supported: VESC_PORT, VESC_BAUD, VESC_FIRMWARE, MONITOR_ADDR,
// RECORD_PATH.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VESC_PORT"); v != "" {
		c.Serial.PortPath = v
	}
	if v := os.Getenv("VESC_BAUD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Serial.BaudRate = n
		}
	}
	if v := os.Getenv("VESC_FIRMWARE"); v != "" {
		c.Serial.Firmware = v
	}
	if v := os.Getenv("MONITOR_ADDR"); v != "" {
		c.Monitor.ListenAddr = v
	}
	if v := os.Getenv("RECORD_PATH"); v != "" {
		c.Record.Path = v
	}
}

// Path returns the file path this config was loaded from, if any.
func (c *Config) Path() string { return c.path }
