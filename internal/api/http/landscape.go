package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/assessment"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/selection"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/wizard"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/id"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/types"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/utils"
)

// ListCategories lists the catalog in step order
func (h *Handlers) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.catalog.List(),
		"total":      h.catalog.Len(),
	})
}

// GetCategory returns one category
func (h *Handlers) GetCategory(c *gin.Context) {
	categoryID := c.Param("id")
	if err := utils.ValidateID(categoryID, "category_id", true); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	cat, ok := h.catalog.Get(categoryID)
	if !ok {
		respondError(c, http.StatusNotFound, "Category not found")
		return
	}
	c.JSON(http.StatusOK, cat)
}

// CreateSession mounts a wizard. A known id resumes its persisted selections.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req types.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	var session *assessment.Session
	if req.ID != "" {
		sid, err := id.ParseSessionID(req.ID)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		session = h.sessions.Open(sid)
	} else {
		session = h.sessions.Create()
	}
	h.metrics.SetSessionsActive(h.sessions.Count())

	var state wizard.State
	_ = session.Do(func(ctl *wizard.Controller) error {
		state = ctl.State()
		return nil
	})
	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID(),
		"state":      state,
	})
}

// GetSession returns the wizard state, mounting it on first access
func (h *Handlers) GetSession(c *gin.Context) {
	h.withController(c, "", func(ctl *wizard.Controller) error { return nil })
}

// NextStep moves to the following category
func (h *Handlers) NextStep(c *gin.Context) {
	h.withController(c, "", func(ctl *wizard.Controller) error {
		if ctl.Submitted() {
			return wizard.ErrAlreadySubmitted
		}
		if ctl.Next() {
			h.metrics.RecordTransition("next")
		}
		return nil
	})
}

// PreviousStep moves to the preceding category
func (h *Handlers) PreviousStep(c *gin.Context) {
	h.withController(c, "", func(ctl *wizard.Controller) error {
		if ctl.Submitted() {
			return wizard.ErrAlreadySubmitted
		}
		if ctl.Previous() {
			h.metrics.RecordTransition("previous")
		}
		return nil
	})
}

// Submit commits the final snapshot
func (h *Handlers) Submit(c *gin.Context) {
	h.withController(c, "submit", func(ctl *wizard.Controller) error {
		if err := ctl.Submit(); err != nil {
			return err
		}
		h.metrics.IncSubmissions()
		return nil
	})
}

// ToggleTool toggles a catalog tool in the current category
func (h *Handlers) ToggleTool(c *gin.Context) {
	var req types.ToggleToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	h.withController(c, "toggle", func(ctl *wizard.Controller) error {
		if ctl.Submitted() {
			return wizard.ErrAlreadySubmitted
		}
		return ctl.Editor().ToggleTool(req.Tool)
	})
}

// AddCustomTool adds free-text tool to the current category
func (h *Handlers) AddCustomTool(c *gin.Context) {
	name, ok := bindCustomTool(c)
	if !ok {
		return
	}
	if name == "" {
		respondError(c, http.StatusBadRequest, "Custom tool name is required")
		return
	}

	h.withController(c, "add_custom", func(ctl *wizard.Controller) error {
		if ctl.Submitted() {
			return wizard.ErrAlreadySubmitted
		}
		ctl.Editor().AddCustomTool(name)
		return nil
	})
}

// RemoveCustomTool removes a free-text tool from the current category
func (h *Handlers) RemoveCustomTool(c *gin.Context) {
	name, ok := bindCustomTool(c)
	if !ok {
		return
	}

	h.withController(c, "remove_custom", func(ctl *wizard.Controller) error {
		if ctl.Submitted() {
			return wizard.ErrAlreadySubmitted
		}
		ctl.Editor().RemoveCustomTool(name)
		return nil
	})
}

// GetSelections returns the live snapshot
func (h *Handlers) GetSelections(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var snapshot []selection.ToolSelection
	_ = session.Do(func(*wizard.Controller) error {
		snapshot = session.Store().Snapshot()
		return nil
	})
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID(),
		"selections": nonNil(snapshot),
	})
}

// GetFinal returns the submitted snapshot
func (h *Handlers) GetFinal(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var (
		snapshot []selection.ToolSelection
		found    bool
	)
	_ = session.Do(func(*wizard.Controller) error {
		snapshot, found = session.Store().LoadFinal()
		return nil
	})
	if !found {
		respondError(c, http.StatusNotFound, "Assessment has not been submitted")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID(),
		"selections": nonNil(snapshot),
	})
}

// session resolves the :id parameter, mounting the wizard if needed
func (h *Handlers) session(c *gin.Context) (*assessment.Session, bool) {
	sid, err := id.ParseSessionID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	session := h.sessions.GetOrOpen(sid)
	h.metrics.SetSessionsActive(h.sessions.Count())
	return session, true
}

// withController runs fn on the session's wizard and responds with its state.
// A non-empty action is counted once fn succeeds.
func (h *Handlers) withController(c *gin.Context, action string, fn func(ctl *wizard.Controller) error) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var state wizard.State
	err := session.Do(func(ctl *wizard.Controller) error {
		if err := fn(ctl); err != nil {
			return err
		}
		if action != "" {
			h.metrics.RecordTransition(action)
		}
		state = ctl.State()
		return nil
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"session_id": session.ID(),
			"state":      state,
		})
	case errors.Is(err, wizard.ErrUnknownTool):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrSubmitNotAllowed), errors.Is(err, wizard.ErrAlreadySubmitted):
		respondError(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Wizard action failed",
			zap.String("session_id", session.ID().String()),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "Internal error")
	}
}

func bindCustomTool(c *gin.Context) (string, bool) {
	var req types.CustomToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return "", false
	}

	name := utils.SanitizeText(req.Name)
	if err := utils.ValidateToolName(name); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return name, true
}

func nonNil(snapshot []selection.ToolSelection) []selection.ToolSelection {
	if snapshot == nil {
		return []selection.ToolSelection{}
	}
	return snapshot
}
