// Package stats derives per-dive statistics from raw cylinders, samples and
// weights: gas mix class, surface air consumption, oxygen toxicity units and
// total ballast. Every function here is pure and never fails; degenerate
// input yields zero.
package stats

import (
	"cmp"
	"math"

	"github.com/pkordes/dive-logbook/internal/domain"
)

const (
	// shallowMM is the depth below which a sample counts as being at the surface.
	shallowMM = 100
	// mbarPerATM converts millibar to standard atmospheres.
	mbarPerATM = 1013.25
	// otuThreshold is the oxygen partial pressure (atm) below which no OTUs accrue.
	otuThreshold = 0.5
	otuExponent  = 0.83
)

// GasMix returns the "maximal" gas of a dive in permille.
//
// The winning cylinder is the one with the most helium, ties broken by the most
// oxygen. minO2 is the leanest oxygen fraction across all cylinders. A missing
// oxygen fraction counts as air. A dive breathing only air, or with no cylinder
// configured at all, is reported as (0, 0, 0).
func GasMix(d *domain.Dive) (maxO2, maxHe, minO2 int) {
	if d == nil {
		return 0, 0, 0
	}
	maxO2, maxHe, minO2 = -1, -1, 1000
	for i, cyl := range d.Cylinders {
		if i >= domain.MaxCylinders {
			break
		}
		if cyl.IsNone() {
			continue
		}
		o2, he := cyl.Mix.O2, cyl.Mix.He
		if o2 == 0 {
			o2 = domain.AirPermille
		}
		if o2 < minO2 {
			minO2 = o2
		}
		if he > maxHe || (he == maxHe && o2 > maxO2) {
			maxHe, maxO2 = he, o2
		}
	}
	if maxHe < 0 {
		return 0, 0, 0
	}
	if maxHe == 0 && maxO2 == domain.AirPermille && minO2 == maxO2 {
		return 0, 0, 0
	}
	return maxO2, maxHe, minO2
}

// Mix is the gas class of a dive as reported by GasMix.
type Mix struct {
	O2    int
	He    int
	MinO2 int
}

// Classify returns the gas class of d.
func Classify(d *domain.Dive) Mix {
	o2, he, low := GasMix(d)
	return Mix{O2: o2, He: he, MinO2: low}
}

// Compare orders gas classes: helium first, then the winning oxygen fraction,
// then the leanest oxygen fraction. Air sorts lowest.
func (m Mix) Compare(o Mix) int {
	if c := cmp.Compare(m.He, o.He); c != 0 {
		return c
	}
	if c := cmp.Compare(m.O2, o.O2); c != 0 {
		return c
	}
	return cmp.Compare(m.MinO2, o.MinO2)
}

// CompareGasMix orders two dives by gas class. It uses the same ordering
// GasMix uses to pick the winning cylinder.
func CompareGasMix(a, b *domain.Dive) int {
	return Classify(a).Compare(Classify(b))
}

// AirUseML returns the gas used across all sized cylinders, in millilitres at
// surface pressure.
func AirUseML(d *domain.Dive) float64 {
	if d == nil {
		return 0
	}
	var used float64
	for i, cyl := range d.Cylinders {
		if i >= domain.MaxCylinders {
			break
		}
		if cyl.SizeML == 0 {
			continue
		}
		start, end := cyl.StartMbar, cyl.EndMbar
		if start == 0 {
			start = cyl.SampleStartMbar
		}
		if end == 0 {
			end = cyl.SampleEndMbar
		}
		used += (float64(start) - float64(end)) / mbarPerATM * float64(cyl.SizeML)
	}
	return used
}

// SurfaceDuration is the dive duration with long surface intervals removed.
// A run of consecutive shallow samples is subtracted when it is followed by a
// deeper sample; a run of a single sample contributes nothing.
func SurfaceDuration(d *domain.Dive) int {
	if d == nil {
		return 0
	}
	duration := d.DurationSec
	samples := d.Samples
	for i := 0; i < len(samples); i++ {
		if samples[i].DepthMM >= shallowMM {
			continue
		}
		end := i + 1
		for end < len(samples) && samples[end].DepthMM < shallowMM {
			end++
		}
		if end < len(samples) {
			end--
			duration -= samples[end].TimeSec - samples[i].TimeSec
			i = end + 1
		}
	}
	return duration
}

// SACRate returns the surface air consumption in millilitres per minute,
// truncated. It is zero when either the duration or the gas used is zero.
func SACRate(d *domain.Dive) int {
	if d == nil || d.DurationSec <= 0 {
		return 0
	}
	used := AirUseML(d)
	if used <= 0 {
		return 0
	}
	duration := SurfaceDuration(d)
	if duration <= 0 {
		return 0
	}
	// 1 atm at the surface plus 1 atm per 10 m of mean depth.
	pressure := 1 + float64(d.MeanDepthMM)/10000
	sac := used / pressure * 60 / float64(duration)
	if math.IsNaN(sac) || math.IsInf(sac, 0) || sac <= 0 {
		return 0
	}
	return int(sac)
}

// OTU returns the oxygen toxicity units accumulated over the dive profile,
// rounded to the nearest integer.
func OTU(d *domain.Dive) int {
	if d == nil {
		return 0
	}
	var otu float64
	for i := 1; i < len(d.Samples); i++ {
		s, prev := d.Samples[i], d.Samples[i-1]
		dt := s.TimeSec - prev.TimeSec
		if dt <= 0 {
			continue
		}
		o2 := domain.AirPermille
		if cyl, ok := d.Cylinder(s.CylinderIndex); ok && cyl.Mix.O2 != 0 {
			o2 = cyl.Mix.O2
		}
		po2 := float64(o2) / 1000 * float64(s.DepthMM+10000) / 10000
		if po2 >= otuThreshold {
			otu += math.Pow(po2-otuThreshold, otuExponent) * float64(dt) / 30
		}
	}
	return int(otu + 0.5)
}

// TotalWeight returns the sum of all weight-system masses in grams.
func TotalWeight(d *domain.Dive) int {
	if d == nil {
		return 0
	}
	total := 0
	for i, w := range d.Weights {
		if i >= domain.MaxWeightSystems {
			break
		}
		total += w.Grams
	}
	return total
}

// Annotate recomputes the cached statistics of d in place.
func Annotate(d *domain.Dive) {
	if d == nil {
		return
	}
	d.SAC = SACRate(d)
	d.OTU = OTU(d)
	d.TotalWeightGrams = TotalWeight(d)
}
