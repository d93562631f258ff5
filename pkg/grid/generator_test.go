package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels_Arithmetic(t *testing.T) {
	levels, err := Levels(100, 200, 5, ModeArithmetic)
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 125, 150, 175, 200}, levels)

	// Adjacent differences are constant
	for i := 1; i < len(levels); i++ {
		assert.Equal(t, 25.0, levels[i]-levels[i-1])
	}
}

func TestLevels_Geometric(t *testing.T) {
	levels, err := Levels(100, 200, 3, ModeGeometric)
	require.NoError(t, err)
	require.Len(t, levels, 3)

	assert.Equal(t, 100.0, levels[0])
	assert.Equal(t, 200.0, levels[2])
	assert.InDelta(t, 100*math.Sqrt2, levels[1], 1e-7)

	// Adjacent ratios are constant
	r1 := levels[1] / levels[0]
	r2 := levels[2] / levels[1]
	assert.InDelta(t, r1, r2, 1e-9)
}

func TestLevels_GeometricEndpointTolerance(t *testing.T) {
	levels, err := Levels(123.45, 6789.1, 50, ModeGeometric)
	require.NoError(t, err)

	assert.Equal(t, 123.45, levels[0])
	assert.Equal(t, 6789.1, levels[49])

	// Monotonically increasing throughout
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i], levels[i-1])
	}

	// Interior levels stay within relative tolerance of the pure
	// geometric sequence
	ratio := math.Pow(6789.1/123.45, 1.0/49)
	for i, level := range levels {
		expected := 123.45 * math.Pow(ratio, float64(i))
		assert.InEpsilon(t, expected, level, 1e-9)
	}
}

func TestLevels_CountEdge(t *testing.T) {
	for _, mode := range []Mode{ModeArithmetic, ModeGeometric} {
		levels, err := Levels(42.5, 99.9, 2, mode)
		require.NoError(t, err)
		assert.Equal(t, []float64{42.5, 99.9}, levels, "mode %s", mode)
	}
}

func TestLevels_DomainErrors(t *testing.T) {
	tests := []struct {
		name  string
		lower float64
		upper float64
		count int
		mode  Mode
	}{
		{"zero lower", 0, 200, 5, ModeArithmetic},
		{"negative lower", -10, 200, 5, ModeArithmetic},
		{"upper below lower", 200, 100, 5, ModeGeometric},
		{"upper equals lower", 100, 100, 5, ModeGeometric},
		{"count too small", 100, 200, 1, ModeArithmetic},
		{"unknown mode", 100, 200, 5, Mode("fibonacci")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels, err := Levels(tt.lower, tt.upper, tt.count, tt.mode)
			assert.Error(t, err)
			assert.Nil(t, levels)
		})
	}
}

func TestSpec_AmountPerGrid(t *testing.T) {
	spec := Spec{
		LowerPrice:       100,
		UpperPrice:       200,
		GridCount:        4,
		Mode:             ModeArithmetic,
		InvestmentAmount: 1000,
	}
	assert.Equal(t, 250.0, spec.AmountPerGrid())

	empty := Spec{}
	assert.Equal(t, 0.0, empty.AmountPerGrid())
}

func TestSpec_Levels(t *testing.T) {
	spec := Spec{
		LowerPrice:       100,
		UpperPrice:       200,
		GridCount:        5,
		Mode:             ModeArithmetic,
		InvestmentAmount: 1000,
	}
	levels, err := spec.Levels()
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 125, 150, 175, 200}, levels)
}
