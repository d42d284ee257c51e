package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrictionDragModel_Decelerate(t *testing.T) {
	tests := []struct {
		name         string
		model        FrictionDragModel
		speedMps     float64
		timeStepMs   float64
		wantAccelMin float64
		wantAccelMax float64
	}{
		{
			name:         "at rest, only rolling friction applies",
			model:        NewFrictionDragModel(0.02, 0.6, 0.6, 90.0),
			speedMps:     0,
			timeStepMs:   20,
			wantAccelMin: 0.19,
			wantAccelMax: 0.20,
		},
		{
			name:         "moving, drag adds to rolling friction",
			model:        NewFrictionDragModel(0.02, 0.6, 0.6, 90.0),
			speedMps:     10,
			timeStepMs:   20,
			wantAccelMin: 0.6,
			wantAccelMax: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accel, deltaV := tt.model.Decelerate(tt.speedMps, tt.timeStepMs)
			assert.GreaterOrEqual(t, accel, tt.wantAccelMin)
			assert.LessOrEqual(t, accel, tt.wantAccelMax)
			assert.GreaterOrEqual(t, deltaV, 0.0)
			assert.InDelta(t, accel*(tt.timeStepMs/1000.0), deltaV, 1e-9)
		})
	}
}

func TestFrictionDragModel_AlwaysNonNegative(t *testing.T) {
	m := NewFrictionDragModel(0.02, 0.6, 0.6, 90.0)
	for _, speed := range []float64{-5, 0, 5, 20} {
		accel, deltaV := m.Decelerate(speed, 20)
		assert.GreaterOrEqual(t, accel, 0.0)
		assert.GreaterOrEqual(t, deltaV, 0.0)
	}
}
