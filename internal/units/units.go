// Package units converts raw dive quantities (millimetres, millikelvin, grams,
// millilitres) into the user's preferred display units.
package units

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkordes/dive-logbook/internal/domain"
)

type Length int

const (
	Meters Length = iota
	Feet
)

type Temperature int

const (
	Celsius Temperature = iota
	Fahrenheit
)

type Weight int

const (
	Kilogram Weight = iota
	Pound
)

type Volume int

const (
	Liter Volume = iota
	CuFt
)

// Units is a display unit preference.
type Units struct {
	Length      Length
	Temperature Temperature
	Weight      Weight
	Volume      Volume
}

var (
	Metric   = Units{Length: Meters, Temperature: Celsius, Weight: Kilogram, Volume: Liter}
	Imperial = Units{Length: Feet, Temperature: Fahrenheit, Weight: Pound, Volume: CuFt}
)

// Parse accepts "metric" or "imperial" (case-insensitive).
func Parse(name string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "metric":
		return Metric, nil
	case "imperial":
		return Imperial, nil
	}
	return Units{}, fmt.Errorf("%w: unknown unit system %q", domain.ErrValidation, name)
}

// Name returns "metric", "imperial" or "custom".
func (u Units) Name() string {
	switch u {
	case Metric:
		return "metric"
	case Imperial:
		return "imperial"
	}
	return "custom"
}

const (
	feetPerMM   = 0.00328084
	gramsPerLb  = 453.6
	mlPerCuFt   = 28316.8
	zeroCelsius = 273150
)

func mmToFeet(mm int) float64 { return float64(mm) * feetPerMM }

func mkelvinToC(mk int) float64 { return float64(mk-zeroCelsius) / 1000 }

func mkelvinToF(mk int) float64 { return float64(mk)*9/5000 - 459.67 }

// Depth formats a depth. Metres show one decimal below 20 m and are rounded
// to whole metres from there on; feet are always whole.
func (u Units) Depth(mm int) string {
	if u.Length == Feet {
		return strconv.Itoa(int(mmToFeet(mm) + 0.5))
	}
	tenths := (mm + 49) / 100
	integer, frac := tenths/10, tenths%10
	if integer < 20 {
		return fmt.Sprintf("%d.%d", integer, frac)
	}
	if frac >= 5 {
		integer++
	}
	return strconv.Itoa(integer)
}

// DepthTitle is the column heading for depths.
func (u Units) DepthTitle() string {
	if u.Length == Feet {
		return "ft"
	}
	return "m"
}

// TemperatureText formats a water temperature with one decimal.
// Zero means "not recorded" and yields an empty string.
func (u Units) TemperatureText(mk int) string {
	if mk == 0 {
		return ""
	}
	deg := mkelvinToC(mk)
	if u.Temperature == Fahrenheit {
		deg = mkelvinToF(mk)
	}
	return fmt.Sprintf("%.1f", deg)
}

func (u Units) TemperatureTitle() string {
	if u.Temperature == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// WeightText formats a ballast weight; zero yields an empty string.
func (u Units) WeightText(grams int) string {
	if grams == 0 {
		return ""
	}
	if u.Weight == Pound {
		return fmt.Sprintf("%.0f", float64(grams)/gramsPerLb)
	}
	return fmt.Sprintf("%.1f", float64(grams)/1000)
}

func (u Units) WeightTitle() string {
	if u.Weight == Pound {
		return "lbs"
	}
	return "kg"
}

// SAC formats an air consumption rate given in ml/min; zero yields an empty string.
func (u Units) SAC(mlPerMin int) string {
	if mlPerMin == 0 {
		return ""
	}
	if u.Volume == CuFt {
		return fmt.Sprintf("%.2f", float64(mlPerMin)/mlPerCuFt)
	}
	return fmt.Sprintf("%.1f", float64(mlPerMin)/1000)
}
