package kinematics_test

import (
	"math"
	"testing"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/kinematics"
	"github.com/stretchr/testify/require"
)

func TestInvariantMass(t *testing.T) {
	t.Run("BackToBackMassless", func(t *testing.T) {
		// Two massless particles with |p| = 10 along +z and -z give M = 20.
		m := kinematics.InvariantMassPxPyPzE(0, 0, 10, 10, 0, 0, -10, 10)
		require.InDelta(t, 20.0, m, 1e-12)
	})
	t.Run("SymmetricUnderSwap", func(t *testing.T) {
		m1 := kinematics.InvariantMass(45.0, 1.2, 0.3, 0.105658, 38.0, -0.7, 2.1, 0.105658)
		m2 := kinematics.InvariantMass(38.0, -0.7, 2.1, 0.105658, 45.0, 1.2, 0.3, 0.105658)
		require.InDelta(t, m1, m2, 1e-12)
	})
	t.Run("FormsAgree", func(t *testing.T) {
		v1 := kinematics.FromPtEtaPhiM(45.0, 1.2, 0.3, 0.105658)
		v2 := kinematics.FromPtEtaPhiM(38.0, -0.7, 2.1, 0.105658)
		want := kinematics.InvariantMass(45.0, 1.2, 0.3, 0.105658, 38.0, -0.7, 2.1, 0.105658)
		got := kinematics.InvariantMassPxPyPzE(v1.Px, v1.Py, v1.Pz, v1.E, v2.Px, v2.Py, v2.Pz, v2.E)
		require.InDelta(t, want, got, 1e-9)
	})
	t.Run("AtRest", func(t *testing.T) {
		// A single massive particle at rest recovered from E.
		v := kinematics.FourVec{E: 91.1876}
		require.InDelta(t, 91.1876, v.M(), 1e-12)
	})
	t.Run("NegativeM2ClampsToZero", func(t *testing.T) {
		v := kinematics.FourVec{Px: 1, E: 1}
		require.Equal(t, 0.0, v.Add(kinematics.FourVec{}).M())
	})
}

func TestDeltaPhi(t *testing.T) {
	t.Run("Wraps", func(t *testing.T) {
		require.InDelta(t, -0.2, kinematics.DeltaPhi(0.1, 0.3), 1e-12)
		// Separation across the -pi/pi boundary stays small.
		require.InDelta(t, 0.2, kinematics.DeltaPhi(math.Pi-0.1, -math.Pi+0.1), 1e-12)
	})
	t.Run("Antisymmetric", func(t *testing.T) {
		require.InDelta(t, -kinematics.DeltaPhi(2.5, 0.4), kinematics.DeltaPhi(0.4, 2.5), 1e-12)
	})
	t.Run("DeltaThetaMatches", func(t *testing.T) {
		require.Equal(t, kinematics.DeltaPhi(0.01, -0.004), kinematics.DeltaTheta(0.01, -0.004))
	})
}

func TestRadius(t *testing.T) {
	require.InDelta(t, 5.0, kinematics.Radius(3, 4), 1e-12)
	require.InDelta(t, 5.0, kinematics.Radius(-3, -4), 1e-12)
	require.Equal(t, 0.0, kinematics.Radius(0, 0))
}

func TestPhiFromPxPy(t *testing.T) {
	cases := []struct {
		name   string
		px, py float64
		want   float64
	}{
		{"PlusX", 1, 0, 0},
		{"PlusY", 0, 1, math.Pi / 2},
		{"MinusX", -1, 0, math.Pi},
		{"MinusY", 0, -1, 3 * math.Pi / 2},
		{"ThirdQuadrant", -1, -1, 5 * math.Pi / 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, kinematics.PhiFromPxPy(tc.px, tc.py), 1e-12)
		})
	}
}

func TestMax4(t *testing.T) {
	require.Equal(t, 4.0, kinematics.Max4(1, 4, 3, 2))
	require.Equal(t, -1.0, kinematics.Max4(-1, -4, -3, -2))
	require.Equal(t, 0.0, kinematics.Max4(0, 0, 0, 0))
}

func TestMaxElementwise(t *testing.T) {
	t.Run("PicksLarger", func(t *testing.T) {
		got, err := kinematics.MaxElementwise([]float64{1, 5, 3}, []float64{2, 4, 3})
		require.NoError(t, err)
		require.Equal(t, []float64{2, 5, 3}, got)
	})
	t.Run("NotSmallerProperty", func(t *testing.T) {
		a := []float64{0.5, -2, 7, 0}
		b := []float64{0.4, -1, 7, 10}
		got, err := kinematics.MaxElementwise(a, b)
		require.NoError(t, err)
		for i := range got {
			require.GreaterOrEqual(t, got[i], a[i])
			require.GreaterOrEqual(t, got[i], b[i])
			require.True(t, got[i] == a[i] || got[i] == b[i])
		}
	})
	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := kinematics.MaxElementwise([]float64{1}, []float64{1, 2})
		require.Error(t, err)
	})
}

func TestRemoveDuplicates(t *testing.T) {
	t.Run("MarksLaterElement", func(t *testing.T) {
		keep := kinematics.RemoveDuplicates([]float64{1.0, 1.0000000000000002, 5.0}, 1e-9)
		require.Equal(t, []bool{true, false, true}, keep)
	})
	t.Run("NoDuplicates", func(t *testing.T) {
		keep := kinematics.RemoveDuplicates([]float64{1, 2, 3, 4}, 1e-9)
		require.Equal(t, []bool{true, true, true, true}, keep)
	})
	t.Run("Empty", func(t *testing.T) {
		require.Empty(t, kinematics.RemoveDuplicates(nil, kinematics.DefaultDuplicateEps))
	})
	t.Run("ExactlyEpsApartIsKept", func(t *testing.T) {
		// The tolerance is strict: a separation of exactly eps is not
		// a duplicate. 0.25 is exact in binary.
		keep := kinematics.RemoveDuplicates([]float64{1.0, 1.25}, 0.25)
		require.Equal(t, []bool{true, true}, keep)

		keep = kinematics.RemoveDuplicates([]float64{1.0, 1.2}, 0.25)
		require.Equal(t, []bool{true, false}, keep)
	})
	t.Run("TransitiveChain", func(t *testing.T) {
		// Each element is close to the first; only the first survives.
		keep := kinematics.RemoveDuplicates([]float64{1.0, 1.0 + 1e-12, 1.0 + 2e-12}, 1e-9)
		require.Equal(t, []bool{true, false, false}, keep)
	})
}
