package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/KevinKickass/OpenPanelCore/internal/api/websocket"
	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// respondError maps the error taxonomy onto HTTP statuses: validation
// errors are the caller's to fix, state conflicts are refusals, transport
// errors mean a collaborator is down.
func respondError(c *gin.Context, err error) {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("validation_failed", verr.Error(), verr.Fields))
		return
	}

	var cerr *types.StateConflictError
	if errors.As(err, &cerr) {
		c.JSON(http.StatusConflict, types.NewErrorResponse("state_conflict", cerr.Message, nil))
		return
	}

	var terr *types.TransportError
	if errors.As(err, &terr) {
		c.JSON(http.StatusBadGateway, types.NewErrorResponse("transport_error", terr.Error(), nil))
		return
	}

	if strings.Contains(err.Error(), "not found") {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// GET /api/v1/dashboards
func (s *Server) listDashboards(c *gin.Context) {
	summaries, err := s.lm.Storage().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dashboards": summaries,
		"count":      len(summaries),
	})
}

// GET /api/v1/dashboards/:name
// The name "active" is reserved and resolves to the currently published
// dashboard; the response is empty when none is published.
func (s *Server) getDashboard(c *gin.Context) {
	name := c.Param("name")

	if name == "active" {
		d, err := s.lm.Storage().Active(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if d == nil {
			c.JSON(http.StatusOK, gin.H{"dashboard": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"dashboard": d})
		return
	}

	d, err := s.lm.Storage().Load(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": d})
}

// POST /api/v1/dashboards
func (s *Server) createDashboard(c *gin.Context) {
	var req struct {
		Name    string         `json:"name" binding:"required"`
		Widgets []types.Widget `json:"widgets"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Widgets == nil {
		req.Widgets = []types.Widget{}
	}
	d := &types.Dashboard{Name: req.Name, Widgets: req.Widgets}

	// Reject structurally damaged documents before they reach storage.
	if err := s.validator.ValidateDashboard(d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.lm.Storage().Create(c.Request.Context(), d); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"name":    req.Name,
		"message": "Dashboard created successfully",
	})
}

// PUT /api/v1/dashboards/:name
func (s *Server) updateDashboard(c *gin.Context) {
	name := c.Param("name")

	var req struct {
		Widgets []types.Widget `json:"widgets"`
	}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Widgets == nil {
		req.Widgets = []types.Widget{}
	}
	if err := s.validator.ValidateDashboard(&types.Dashboard{Name: name, Widgets: req.Widgets}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.lm.Storage().Update(c.Request.Context(), name, req.Widgets); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":    name,
		"message": "Dashboard updated successfully",
	})
}

// PUT /api/v1/dashboards/:name/publish
func (s *Server) publishDashboard(c *gin.Context) {
	name := c.Param("name")

	if err := s.lm.Storage().Publish(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}

	s.wsHub.Broadcast(websocket.NewDashboardPublishedMessage(name))

	c.JSON(http.StatusOK, gin.H{
		"name":    name,
		"message": "Dashboard published successfully",
	})
}

// DELETE /api/v1/dashboards/:name
// Deleting the published dashboard leaves the viewer with no active
// dashboard; nothing is promoted in its place.
func (s *Server) deleteDashboard(c *gin.Context) {
	name := c.Param("name")

	if err := s.lm.Storage().Delete(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}

	s.wsHub.Broadcast(websocket.NewDashboardDeletedMessage(name))

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard deleted successfully",
	})
}

// POST /api/v1/dashboards/:name/widgets
func (s *Server) addDashboardWidget(c *gin.Context) {
	name := c.Param("name")

	var w types.Widget
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.lm.Storage().AddWidget(c.Request.Context(), name, w); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      w.ID,
		"message": "Widget added successfully",
	})
}

// DELETE /api/v1/dashboards/:name/widgets/:id
func (s *Server) removeDashboardWidget(c *gin.Context) {
	name := c.Param("name")
	widgetID := c.Param("id")

	if err := s.lm.Storage().RemoveWidget(c.Request.Context(), name, widgetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Widget removed successfully",
	})
}
