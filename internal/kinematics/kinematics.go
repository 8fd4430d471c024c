// Package kinematics provides the closed-form helper functions used by the
// data-quality analysis: invariant masses, track angles, and the
// epsilon-tolerance duplicate-track filter.
package kinematics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// FourVec is a four-momentum in Cartesian components.
type FourVec struct {
	Px, Py, Pz, E float64
}

// FromPtEtaPhiM builds a four-momentum from transverse momentum,
// pseudorapidity, azimuth, and mass.
func FromPtEtaPhiM(pt, eta, phi, mass float64) FourVec {
	px := pt * math.Cos(phi)
	py := pt * math.Sin(phi)
	pz := pt * math.Sinh(eta)
	p := pt * math.Cosh(eta)
	return FourVec{
		Px: px,
		Py: py,
		Pz: pz,
		E:  math.Sqrt(p*p + mass*mass),
	}
}

// M returns the invariant mass of the four-momentum. Small negative
// arguments from floating point cancellation clamp to zero.
func (v FourVec) M() float64 {
	m2 := v.E*v.E - v.Px*v.Px - v.Py*v.Py - v.Pz*v.Pz
	if m2 < 0 {
		return 0
	}
	return math.Sqrt(m2)
}

// Add returns the component-wise sum of two four-momenta.
func (v FourVec) Add(o FourVec) FourVec {
	return FourVec{
		Px: v.Px + o.Px,
		Py: v.Py + o.Py,
		Pz: v.Pz + o.Pz,
		E:  v.E + o.E,
	}
}

// InvariantMass returns the invariant mass of a two-particle system given in
// pt/eta/phi/mass form.
func InvariantMass(pt1, eta1, phi1, mass1, pt2, eta2, phi2, mass2 float64) float64 {
	p1 := FromPtEtaPhiM(pt1, eta1, phi1, mass1)
	p2 := FromPtEtaPhiM(pt2, eta2, phi2, mass2)
	return p1.Add(p2).M()
}

// InvariantMassPxPyPzE returns the invariant mass of a two-particle system
// given in Cartesian components.
func InvariantMassPxPyPzE(px1, py1, pz1, e1, px2, py2, pz2, e2 float64) float64 {
	p1 := FourVec{Px: px1, Py: py1, Pz: pz1, E: e1}
	p2 := FourVec{Px: px2, Py: py2, Pz: pz2, E: e2}
	return p1.Add(p2).M()
}

// DeltaPhi returns the azimuthal separation phi1-phi2 wrapped into
// (-pi, pi].
func DeltaPhi(phi1, phi2 float64) float64 {
	d := math.Mod(phi1-phi2, 2*math.Pi)
	switch {
	case d > math.Pi:
		d -= 2 * math.Pi
	case d <= -math.Pi:
		d += 2 * math.Pi
	}
	return d
}

// DeltaTheta returns the angular separation of two polar angles. The wrap
// is identical to DeltaPhi.
func DeltaTheta(theta1, theta2 float64) float64 {
	return DeltaPhi(theta1, theta2)
}

// Radius returns the transverse distance from the beamline.
func Radius(x, y float64) float64 {
	return math.Hypot(x, y)
}

// PhiFromPxPy returns the azimuth of the momentum components in [0, 2*pi).
func PhiFromPxPy(px, py float64) float64 {
	phi := math.Atan2(py, px)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi
}

// Max4 returns the largest of four values.
func Max4(v1, v2, v3, v4 float64) float64 {
	return floats.Max([]float64{v1, v2, v3, v4})
}

// MaxElementwise returns a slice holding, at every index, whichever of the
// two inputs' values at that index is not smaller.
func MaxElementwise(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("length mismatch: %d != %d", len(a), len(b))
	}
	out := make([]float64, len(a))
	for i := range a {
		if a[i] < b[i] {
			out[i] = b[i]
		} else {
			out[i] = a[i]
		}
	}
	return out, nil
}

// DefaultDuplicateEps is the tolerance used by the duplicate-track filter
// when none is given.
const DefaultDuplicateEps = 1e-15

// RemoveDuplicates returns a keep mask for the values. An element is marked
// as a duplicate (false) when any earlier element differs from it by
// strictly less than eps; the earlier element is always kept.
func RemoveDuplicates(values []float64, eps float64) []bool {
	keep := make([]bool, len(values))
	for i := range keep {
		keep[i] = true
	}
	for i := range values {
		for j := 0; j < i; j++ {
			if math.Abs(values[i]-values[j]) < eps {
				keep[i] = false
				break
			}
		}
	}
	return keep
}
