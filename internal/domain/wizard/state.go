package wizard

import (
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/selection"
)

// State is a read-only view of a controller for rendering
type State struct {
	Step          int                     `json:"step"`
	TotalSteps    int                     `json:"total_steps"`
	Progress      float64                 `json:"progress"`
	Category      catalog.Category        `json:"category"`
	Selection     selection.ToolSelection `json:"selection"`
	SelectedCount int                     `json:"selected_count"`
	CanPrevious   bool                    `json:"can_previous"`
	CanNext       bool                    `json:"can_next"`
	CanSubmit     bool                    `json:"can_submit"`
	Submitted     bool                    `json:"submitted"`
	Completed     int                     `json:"completed"`
	Summary       []SummaryEntry          `json:"summary"`
}

// SummaryEntry is one touched category with its tool count
type SummaryEntry struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

// State builds the current view
func (c *Controller) State() State {
	editor := c.Editor()
	sel := editor.Selection()

	snapshot := c.store.Snapshot()
	summary := make([]SummaryEntry, 0, len(snapshot))
	for _, s := range snapshot {
		entry := SummaryEntry{Category: s.Category, Count: s.Count()}
		if cat, ok := c.catalog.Get(s.Category); ok {
			entry.Name = cat.Name
		}
		summary = append(summary, entry)
	}

	return State{
		Step:          c.step,
		TotalSteps:    c.Steps(),
		Progress:      c.Progress(),
		Category:      editor.Category(),
		Selection:     sel,
		SelectedCount: sel.Count(),
		CanPrevious:   c.CanPrevious(),
		CanNext:       c.CanNext(),
		CanSubmit:     c.CanSubmit(),
		Submitted:     c.submitted,
		Completed:     len(snapshot),
		Summary:       summary,
	}
}
