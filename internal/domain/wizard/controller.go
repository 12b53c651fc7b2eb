package wizard

import (
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/selection"
)

var (
	ErrSubmitNotAllowed = errors.New("submit is only allowed on the last step")
	ErrAlreadySubmitted = errors.New("assessment already submitted")
)

// Controller is the step state machine over the catalog
type Controller struct {
	catalog   *catalog.Catalog
	store     *selection.Store
	logger    *zap.Logger
	step      int
	submitted bool
}

// NewController creates a controller. Call Mount before use.
func NewController(cat *catalog.Catalog, store *selection.Store, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		catalog: cat,
		store:   store,
		logger:  logger,
	}
}

// Mount resets the position to the first step and loads saved selections
func (c *Controller) Mount() {
	c.step = 0
	c.submitted = false
	loaded := c.store.Load()
	c.logger.Debug("Wizard mounted", zap.Int("restored_categories", len(loaded)))
}

// Step returns the current step index
func (c *Controller) Step() int {
	return c.step
}

// Steps returns the number of steps (categories)
func (c *Controller) Steps() int {
	return c.catalog.Len()
}

// Submitted reports whether the assessment was submitted
func (c *Controller) Submitted() bool {
	return c.submitted
}

// CanNext reports whether Next would move
func (c *Controller) CanNext() bool {
	return !c.submitted && c.step < c.Steps()-1
}

// CanPrevious reports whether Previous would move
func (c *Controller) CanPrevious() bool {
	return !c.submitted && c.step > 0
}

// CanSubmit reports whether Submit is allowed
func (c *Controller) CanSubmit() bool {
	return !c.submitted && c.step == c.Steps()-1
}

// Next moves to the following category. It returns false at the last step.
func (c *Controller) Next() bool {
	if !c.CanNext() {
		return false
	}
	c.step++
	return true
}

// Previous moves to the preceding category. It returns false at step 0.
func (c *Controller) Previous() bool {
	if !c.CanPrevious() {
		return false
	}
	c.step--
	return true
}

// Submit commits the final snapshot. It is only allowed on the last step,
// and only once.
func (c *Controller) Submit() error {
	if c.submitted {
		return ErrAlreadySubmitted
	}
	if c.step != c.Steps()-1 {
		return ErrSubmitNotAllowed
	}

	snapshot := c.store.Snapshot()
	c.store.CommitFinal(snapshot)
	c.submitted = true

	c.logger.Info("Assessment submitted", zap.Int("categories", len(snapshot)))
	return nil
}

// CurrentCategory returns the category at the current step
func (c *Controller) CurrentCategory() catalog.Category {
	cat, _ := c.catalog.At(c.step)
	return cat
}

// Progress returns the completion percentage for display
func (c *Controller) Progress() float64 {
	return ProgressPercent(c.step, c.Steps())
}

// Editor returns an editor for the current category, seeded from the store
// and reporting changes back to it
func (c *Controller) Editor() *Editor {
	cat := c.CurrentCategory()
	var existing *selection.ToolSelection
	if sel, ok := c.store.Get(cat.ID); ok {
		existing = &sel
	}
	return NewEditor(cat, existing, c.store)
}

// ProgressPercent is (step+1)/total*100
func ProgressPercent(step, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(step+1) / float64(total) * 100
}
