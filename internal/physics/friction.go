// Package physics implements the eboard's pure-function force generators:
// rolling friction + aerodynamic drag, and the stochastic rider push.
package physics

const (
	gravityMps2   = 9.81
	airDensityKgM = 1.225
)

// FrictionDragModel computes the combined rolling-friction and aerodynamic
// drag deceleration for the board. It is a pure function of the board's
// mass, frontal area, and the two tunable coefficients.
type FrictionDragModel struct {
	MuRolling     float64
	CDrag         float64
	FrontalAreaM2 float64
	TotalMassKg   float64
}

// NewFrictionDragModel constructs a FrictionDragModel from its tunable
// coefficients and the board's physical parameters.
func NewFrictionDragModel(muRolling, cDrag, frontalAreaM2, totalMassKg float64) FrictionDragModel {
	return FrictionDragModel{
		MuRolling:     muRolling,
		CDrag:         cDrag,
		FrontalAreaM2: frontalAreaM2,
		TotalMassKg:   totalMassKg,
	}
}

// Decelerate returns the magnitude of the friction+drag deceleration
// (m/s^2) and the corresponding velocity delta (m/s) over timeStepMs, given
// the current (unsigned) speed. Both returned values are always
// non-negative; the caller applies sign based on direction of travel (I3).
func (m FrictionDragModel) Decelerate(currentSpeedMps, timeStepMs float64) (accelMps2, deltaVMps float64) {
	forceFrictionN := m.MuRolling * m.TotalMassKg * gravityMps2
	forceDragN := m.CDrag * airDensityKgM * currentSpeedMps * currentSpeedMps * m.FrontalAreaM2
	accelMps2 = (forceFrictionN + forceDragN) / m.TotalMassKg
	deltaVMps = accelMps2 * (timeStepMs / 1000.0)
	return accelMps2, deltaVMps
}
