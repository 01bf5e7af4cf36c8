package divelist

// Shell is the surrounding application the list notifies. Implementations
// must not call back into the List synchronously.
type Shell interface {
	// Refresh is called after every selection change with the current dive,
	// or -1 when there is none.
	Refresh(current int)
	SetFont(font string)
	SetColumnVisible(col Column, visible bool)
	// EditDive is called when a dive row is activated.
	EditDive(index int)
}

// NopShell ignores every notification.
type NopShell struct{}

func (NopShell) Refresh(int)                   {}
func (NopShell) SetFont(string)                {}
func (NopShell) SetColumnVisible(Column, bool) {}
func (NopShell) EditDive(int)                  {}

var _ Shell = NopShell{}
