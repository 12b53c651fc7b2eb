package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/selection"
)

type recordingListener struct {
	calls []selection.ToolSelection
}

func (r *recordingListener) OnSelectionChange(sel selection.ToolSelection) {
	r.calls = append(r.calls, sel)
}

func testCategory() catalog.Category {
	return catalog.Category{
		ID:    "itsm",
		Name:  "IT Service Management (ITSM)",
		Tools: []string{"ServiceNow", "Jira Service Management", "Zendesk"},
	}
}

func TestToggleTool(t *testing.T) {
	listener := &recordingListener{}
	e := NewEditor(testCategory(), nil, listener)

	require.NoError(t, e.ToggleTool("Zendesk"))
	require.NoError(t, e.ToggleTool("ServiceNow"))
	assert.Equal(t, []string{"Zendesk", "ServiceNow"}, e.Selection().SelectedTools)

	require.NoError(t, e.ToggleTool("Zendesk"))
	assert.Equal(t, []string{"ServiceNow"}, e.Selection().SelectedTools)
	assert.False(t, e.IsSelected("Zendesk"))

	require.Len(t, listener.calls, 3)
	assert.Equal(t, "itsm", listener.calls[2].Category)
}

func TestToggleUnknownTool(t *testing.T) {
	listener := &recordingListener{}
	e := NewEditor(testCategory(), nil, listener)

	err := e.ToggleTool("UiPath")
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Empty(t, listener.calls)
}

func TestAddCustomTool(t *testing.T) {
	listener := &recordingListener{}
	e := NewEditor(testCategory(), nil, listener)

	assert.True(t, e.AddCustomTool("  Foo  "))
	assert.False(t, e.AddCustomTool("Foo"))
	assert.False(t, e.AddCustomTool("   "))
	assert.False(t, e.AddCustomTool(""))
	assert.True(t, e.AddCustomTool("foo"))

	assert.Equal(t, []string{"Foo", "foo"}, e.Selection().CustomTools)
	assert.Len(t, listener.calls, 2)
}

func TestRemoveCustomTool(t *testing.T) {
	listener := &recordingListener{}
	e := NewEditor(testCategory(), &selection.ToolSelection{
		Category:    "itsm",
		CustomTools: []string{"A", "B"},
	}, listener)

	assert.False(t, e.RemoveCustomTool("C"))
	assert.True(t, e.RemoveCustomTool("A"))
	assert.Equal(t, []string{"B"}, e.Selection().CustomTools)
	assert.Len(t, listener.calls, 1)
}

func TestEditorSeedsFromExisting(t *testing.T) {
	existing := &selection.ToolSelection{
		Category:      "itsm",
		SelectedTools: []string{"Zendesk", "Retired Tool"},
		CustomTools:   []string{"Foo"},
	}
	e := NewEditor(testCategory(), existing, nil)

	sel := e.Selection()
	assert.Equal(t, []string{"Zendesk"}, sel.SelectedTools)
	assert.Equal(t, []string{"Foo"}, sel.CustomTools)
	assert.Equal(t, 2, e.Count())

	// Seeding copies
	existing.CustomTools[0] = "Bar"
	assert.Equal(t, []string{"Foo"}, e.Selection().CustomTools)
}

func TestEditorReportsFullSelectionToStore(t *testing.T) {
	store := selection.NewStore(newMemBackend(), nil)
	store.Load()
	e := NewEditor(testCategory(), nil, store)

	require.NoError(t, e.ToggleTool("ServiceNow"))
	e.AddCustomTool("Foo")

	got, ok := store.Get("itsm")
	require.True(t, ok)
	assert.Equal(t, []string{"ServiceNow"}, got.SelectedTools)
	assert.Equal(t, []string{"Foo"}, got.CustomTools)
}
