package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/selection"
)

// ErrUnknownTool is returned when toggling a tool that is not in the
// category's catalog list
var ErrUnknownTool = errors.New("tool is not in the category catalog")

// Editor edits the selection of a single category
type Editor struct {
	category catalog.Category
	selected []string
	custom   []string
	listener selection.Listener
}

// NewEditor seeds an editor from an existing selection (may be nil).
// Selected tools that are no longer in the catalog are dropped.
func NewEditor(category catalog.Category, existing *selection.ToolSelection, listener selection.Listener) *Editor {
	e := &Editor{
		category: category,
		selected: []string{},
		custom:   []string{},
		listener: listener,
	}
	if existing != nil {
		for _, tool := range existing.SelectedTools {
			if category.HasTool(tool) && !contains(e.selected, tool) {
				e.selected = append(e.selected, tool)
			}
		}
		for _, tool := range existing.CustomTools {
			if !contains(e.custom, tool) {
				e.custom = append(e.custom, tool)
			}
		}
	}
	return e
}

// Category returns the category being edited
func (e *Editor) Category() catalog.Category {
	return e.category
}

// ToggleTool selects a catalog tool, or deselects it when already selected
func (e *Editor) ToggleTool(tool string) error {
	if !e.category.HasTool(tool) {
		return fmt.Errorf("%w: %q in %s", ErrUnknownTool, tool, e.category.ID)
	}

	if contains(e.selected, tool) {
		e.selected = without(e.selected, tool)
	} else {
		e.selected = append(e.selected, tool)
	}
	e.notify()
	return nil
}

// AddCustomTool adds a free-text tool name. Empty input (after trimming)
// and exact duplicates are ignored. Returns whether the selection changed.
func (e *Editor) AddCustomTool(text string) bool {
	name := strings.TrimSpace(text)
	if name == "" || contains(e.custom, name) {
		return false
	}
	e.custom = append(e.custom, name)
	e.notify()
	return true
}

// RemoveCustomTool removes an exact match. Returns whether the selection changed.
func (e *Editor) RemoveCustomTool(text string) bool {
	if !contains(e.custom, text) {
		return false
	}
	e.custom = without(e.custom, text)
	e.notify()
	return true
}

// IsSelected reports whether a catalog tool is currently selected
func (e *Editor) IsSelected(tool string) bool {
	return contains(e.selected, tool)
}

// Selection returns a copy of the working selection
func (e *Editor) Selection() selection.ToolSelection {
	return selection.ToolSelection{
		Category:      e.category.ID,
		SelectedTools: append([]string{}, e.selected...),
		CustomTools:   append([]string{}, e.custom...),
	}
}

// Count is the number of tools chosen in this category
func (e *Editor) Count() int {
	return len(e.selected) + len(e.custom)
}

func (e *Editor) notify() {
	if e.listener != nil {
		e.listener.OnSelectionChange(e.Selection())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
