package service

import (
	"log/slog"

	"github.com/pkordes/dive-logbook/internal/divelist"
)

// logShell is the divelist.Shell of a headless server: there is no window to
// redraw, so notifications are logged and mirrored into metrics.
type logShell struct {
	log  *slog.Logger
	list func() *divelist.List
}

func (s logShell) Refresh(current int) {
	if l := s.list(); l != nil {
		selectedCount.Set(float64(l.SelectedCount()))
	}
	s.log.Debug("dive list refreshed", "current", current)
}

func (s logShell) SetFont(font string) {
	s.log.Info("dive list font changed", "font", font)
}

func (s logShell) SetColumnVisible(col divelist.Column, visible bool) {
	s.log.Info("dive list column toggled", "column", col.String(), "visible", visible)
}

func (s logShell) EditDive(index int) {
	s.log.Info("dive edit requested", "index", index)
}

var _ divelist.Shell = logShell{}
