// Package board describes the fixed physical configuration of the electric
// land-paddle skateboard being simulated.
package board

import "github.com/shaunagostinho/eboard-vesc-sim/internal/simerrors"

// Params is the immutable physical description of the eboard and its motor.
// It is constructed once at startup and never mutated afterward.
type Params struct {
	TotalMassKg            float64 `yaml:"total_mass_kg" json:"totalMassKg"`
	FrontalAreaM2          float64 `yaml:"frontal_area_m2" json:"frontalAreaM2"`
	WheelDiameterM         float64 `yaml:"wheel_diameter_m" json:"wheelDiameterM"`
	BatteryCapacityAh      float64 `yaml:"battery_capacity_ah" json:"batteryCapacityAh"`
	BatteryNominalVoltageV float64 `yaml:"battery_nominal_voltage_v" json:"batteryNominalVoltageV"`
	GearRatio              float64 `yaml:"gear_ratio" json:"gearRatio"`
	MotorKvRPMPerV         float64 `yaml:"motor_kv_rpm_per_v" json:"motorKvRpmPerV"`
	MotorMaxTorqueNm       float64 `yaml:"motor_max_torque_nm" json:"motorMaxTorqueNm"`
	MotorMaxAmps           float64 `yaml:"motor_max_amps" json:"motorMaxAmps"`
	MotorMaxPowerW         float64 `yaml:"motor_max_power_w" json:"motorMaxPowerW"`
	MotorPolePairs         int     `yaml:"motor_pole_pairs" json:"motorPolePairs"`
}

// Validate rejects any physically nonsensical configuration before any
// goroutine is started. MotorKvRPMPerV <= 0 is rejected here specifically so
// that K_t = 60/(2*pi*kv) is always well-defined downstream (see motor
// controller design notes on the Kv edge case).
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"total_mass_kg", p.TotalMassKg},
		{"frontal_area_m2", p.FrontalAreaM2},
		{"wheel_diameter_m", p.WheelDiameterM},
		{"battery_capacity_ah", p.BatteryCapacityAh},
		{"battery_nominal_voltage_v", p.BatteryNominalVoltageV},
		{"gear_ratio", p.GearRatio},
		{"motor_kv_rpm_per_v", p.MotorKvRPMPerV},
		{"motor_max_torque_nm", p.MotorMaxTorqueNm},
		{"motor_max_amps", p.MotorMaxAmps},
		{"motor_max_power_w", p.MotorMaxPowerW},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return simerrors.NewConfigError("%s must be > 0, got %v", c.name, c.value)
		}
	}
	if p.MotorPolePairs <= 0 {
		return simerrors.NewConfigError("motor_pole_pairs must be > 0, got %d", p.MotorPolePairs)
	}
	return nil
}

// WheelRadiusM is a convenience accessor used throughout the motor and
// physics packages.
func (p Params) WheelRadiusM() float64 {
	return p.WheelDiameterM / 2
}

// MotorKt is the motor torque constant K_t = 60 / (2*pi*Kv), derived once the
// config has been validated to have a positive Kv.
func (p Params) MotorKt() float64 {
	const twoPi = 2 * 3.141592653589793
	return 60 / (twoPi * p.MotorKvRPMPerV)
}
