package divelist

import (
	"fmt"
	"strings"

	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/units"
)

// Column identifies one dive list column.
type Column int

const (
	ColNr Column = iota
	ColDate
	ColRating
	ColDepth
	ColDuration
	ColTemperature
	ColTotalWeight
	ColSuit
	ColCylinder
	ColNitrox
	ColSAC
	ColOTU
	ColLocation
	numColumns
)

var columnNames = [numColumns]string{
	"nr", "date", "rating", "depth", "duration", "temperature", "totalweight",
	"suit", "cylinder", "nitrox", "sac", "otu", "location",
}

func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return fmt.Sprintf("column(%d)", int(c))
	}
	return columnNames[c]
}

// ParseColumn looks a column up by its lowercase name.
func ParseColumn(s string) (Column, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range columnNames {
		if name == s {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown column %q", domain.ErrValidation, s)
}

// Columns returns every column in display order.
func Columns() []Column {
	out := make([]Column, numColumns)
	for i := range out {
		out[i] = Column(i)
	}
	return out
}

// Sortable reports whether the list can be ordered by c. The dive number
// follows the date and is not sortable on its own.
func (c Column) Sortable() bool {
	return c > ColNr && c < numColumns
}

// Toggleable reports whether the user may hide c.
func (c Column) Toggleable() bool {
	switch c {
	case ColTemperature, ColTotalWeight, ColSuit, ColCylinder, ColNitrox, ColSAC, ColOTU:
		return true
	}
	return false
}

// Title is the column heading; unit-bearing columns follow u.
func (c Column) Title(u units.Units) string {
	switch c {
	case ColNr:
		return "#"
	case ColDate:
		return "Date"
	case ColRating:
		return "★"
	case ColDepth:
		return u.DepthTitle()
	case ColDuration:
		return "min"
	case ColTemperature:
		return u.TemperatureTitle()
	case ColTotalWeight:
		return u.WeightTitle()
	case ColSuit:
		return "Suit"
	case ColCylinder:
		return "Cyl"
	case ColNitrox:
		return "O₂%"
	case ColSAC:
		return "SAC"
	case ColOTU:
		return "OTU"
	case ColLocation:
		return "Location"
	}
	return ""
}

// SortOrder is a column's sort direction.
type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

func (o SortOrder) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseSortOrder accepts "asc" or "desc"; empty means descending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	}
	return 0, fmt.Errorf("%w: unknown sort order %q", domain.ErrValidation, s)
}
