package divelist

import (
	"github.com/pkordes/dive-logbook/internal/grouping"
	"github.com/pkordes/dive-logbook/internal/units"
)

// DefaultFont is the list font used until the user picks another one.
const DefaultFont = "Sans 8"

// Context is the presentation state shared by both projections: which one
// is active, the remembered direction of every column, display preferences
// and the grouping options.
type Context struct {
	Active     ProjectionKind
	Order      [numColumns]SortOrder
	LastColumn Column
	Units      units.Units
	Font       string
	Visible    [numColumns]bool
	Autogroup  bool
	Window     grouping.WindowPolicy

	// swapping is set while the list switches projections, so the sort
	// callback of the newly active projection does not switch again.
	swapping bool
	changed  bool
}

// NewContext returns the startup state: grouped projection sorted by date,
// every column descending and visible, metric units.
func NewContext() *Context {
	c := &Context{
		Active:     Grouped,
		LastColumn: ColDate,
		Units:      units.Metric,
		Font:       DefaultFont,
		Window:     grouping.Threshold(grouping.DefaultWindow),
	}
	for i := range c.Visible {
		c.Visible[i] = true
	}
	return c
}
