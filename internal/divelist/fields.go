package divelist

import (
	"cmp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/stats"
	"github.com/pkordes/dive-logbook/internal/units"
)

// maxTextLen caps free-text columns, in runes.
const maxTextLen = 60

// Fields are the derived values one row shows. Raw values drive sorting;
// the rendered text follows the current display units.
type Fields struct {
	Trip        bool
	Number      int
	When        time.Time
	Rating      int
	DepthMM     int
	DurationSec int
	TempMK      int
	WeightGrams int
	Suit        string
	Cylinder    string
	Location    string
	Mix         stats.Mix
	SAC         int
	OTU         int

	text [numColumns]string
}

// Text returns the rendered value of column c.
func (f Fields) Text(c Column) string {
	if c < 0 || c >= numColumns {
		return ""
	}
	return f.text[c]
}

func diveFields(d *domain.Dive, u units.Units) Fields {
	f := Fields{
		Number:      d.Number,
		When:        d.When,
		Rating:      d.Rating,
		DepthMM:     d.MaxDepthMM,
		DurationSec: d.DurationSec,
		TempMK:      d.WaterTempMK,
		WeightGrams: d.TotalWeightGrams,
		Suit:        clip(d.Suit),
		Location:    clip(d.Location),
		Mix:         stats.Classify(d),
		SAC:         d.SAC,
		OTU:         d.OTU,
	}
	if cyl, ok := d.Cylinder(0); ok {
		f.Cylinder = clip(cyl.Description)
	}
	f.render(u)
	return f
}

func tripFields(t domain.Trip, u units.Units) Fields {
	f := Fields{
		Trip:     true,
		Number:   t.Count,
		When:     t.When,
		Location: clip(t.Location),
	}
	f.render(u)
	return f
}

func (f *Fields) render(u units.Units) {
	f.text = [numColumns]string{}
	if f.Trip {
		f.text[ColDate] = units.TripLabel(f.When, f.Number)
		f.text[ColLocation] = f.Location
		return
	}
	if f.Number > 0 {
		f.text[ColNr] = strconv.Itoa(f.Number)
	}
	f.text[ColDate] = units.DiveDate(f.When)
	f.text[ColRating] = units.Stars(f.Rating)
	f.text[ColDepth] = u.Depth(f.DepthMM)
	f.text[ColDuration] = units.Duration(f.DurationSec)
	f.text[ColTemperature] = u.TemperatureText(f.TempMK)
	f.text[ColTotalWeight] = u.WeightText(f.WeightGrams)
	f.text[ColSuit] = f.Suit
	f.text[ColCylinder] = f.Cylinder
	f.text[ColNitrox] = units.Nitrox(f.Mix.O2, f.Mix.He, f.Mix.MinO2)
	f.text[ColSAC] = u.SAC(f.SAC)
	f.text[ColOTU] = units.OTU(f.OTU)
	f.text[ColLocation] = f.Location
}

// compareFields orders two rows by column c, ascending.
func compareFields(a, b Fields, c Column) int {
	switch c {
	case ColNr:
		return cmp.Compare(a.Number, b.Number)
	case ColDate:
		return a.When.Compare(b.When)
	case ColRating:
		return cmp.Compare(a.Rating, b.Rating)
	case ColDepth:
		return cmp.Compare(a.DepthMM, b.DepthMM)
	case ColDuration:
		return cmp.Compare(a.DurationSec, b.DurationSec)
	case ColTemperature:
		return cmp.Compare(a.TempMK, b.TempMK)
	case ColTotalWeight:
		return cmp.Compare(a.WeightGrams, b.WeightGrams)
	case ColSuit:
		return strings.Compare(a.Suit, b.Suit)
	case ColCylinder:
		return strings.Compare(a.Cylinder, b.Cylinder)
	case ColNitrox:
		return a.Mix.Compare(b.Mix)
	case ColSAC:
		return cmp.Compare(a.SAC, b.SAC)
	case ColOTU:
		return cmp.Compare(a.OTU, b.OTU)
	case ColLocation:
		return strings.Compare(a.Location, b.Location)
	}
	return 0
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxTextLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxTextLen]) + "…"
}
