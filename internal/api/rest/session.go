package rest

import (
	"net/http"

	"github.com/KevinKickass/OpenPanelCore/internal/api/websocket"
	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/KevinKickass/OpenPanelCore/internal/widgets"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// GET /api/v1/session
func (s *Server) getSessionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.lm.Session().GetStatus())
}

// GET /api/v1/session/widgets
func (s *Server) getSessionWidgets(c *gin.Context) {
	w := s.lm.Session().Widgets()
	c.JSON(http.StatusOK, gin.H{
		"widgets": w,
		"count":   len(w),
	})
}

// GET /api/v1/session/values
func (s *Server) getSessionValues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"values": s.lm.Session().PollStates(),
	})
}

// POST /api/v1/session/new
func (s *Server) newDashboard(c *gin.Context) {
	s.lm.Session().NewDashboard()
	c.JSON(http.StatusOK, s.lm.Session().GetStatus())
}

// POST /api/v1/session/open/:name
func (s *Server) openDashboard(c *gin.Context) {
	if err := s.lm.Session().Load(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lm.Session().GetStatus())
}

// POST /api/v1/session/widgets
func (s *Server) addWidget(c *gin.Context) {
	var req struct {
		Type    types.WidgetType      `json:"type" binding:"required"`
		Request widgets.CreateRequest `json:"request"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := s.lm.Session().AddWidget(req.Type, req.Request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"widget": w})
}

// DELETE /api/v1/session/widgets/:id
func (s *Server) deleteWidget(c *gin.Context) {
	if err := s.lm.Session().DeleteWidget(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Widget deleted successfully"})
}

// PUT /api/v1/session/widgets/:id/binding
func (s *Server) applyBinding(c *gin.Context) {
	var b types.Binding
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.lm.Session().ApplyBinding(c.Param("id"), b); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Binding updated successfully"})
}

// PUT /api/v1/session/widgets/:id/settings
func (s *Server) applySettings(c *gin.Context) {
	var req struct {
		Template string          `json:"template,omitempty"`
		Override *types.Settings `json:"override,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.lm.Session().ApplySettings(c.Request.Context(), c.Param("id"), req.Template, req.Override); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings applied successfully"})
}

// PUT /api/v1/session/settings/bulk
// Applies one resolved settings record to every widget of a type in a
// single all-or-nothing pass.
func (s *Server) applySettingsBulk(c *gin.Context) {
	var req struct {
		Type     types.WidgetType `json:"type" binding:"required"`
		Template string           `json:"template,omitempty"`
		Override *types.Settings  `json:"override,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := s.lm.Session().ApplySettingsToType(c.Request.Context(), req.Type, req.Template, req.Override)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings applied successfully",
		"count":   count,
	})
}

// PUT /api/v1/session/layout
func (s *Server) applyLayout(c *gin.Context) {
	var cells []types.GridCell
	if err := c.ShouldBindWith(&cells, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.lm.Session().ApplyLayoutChange(cells)
	c.JSON(http.StatusOK, gin.H{"message": "Layout applied successfully"})
}

// POST /api/v1/session/save
func (s *Server) saveDashboard(c *gin.Context) {
	var req struct {
		Name string `json:"name,omitempty"`
	}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.lm.Session().Save(c.Request.Context(), req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lm.Session().GetStatus())
}

// POST /api/v1/session/publish
func (s *Server) publishSession(c *gin.Context) {
	if err := s.lm.Session().Publish(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	status := s.lm.Session().GetStatus()
	s.wsHub.Broadcast(websocket.NewDashboardPublishedMessage(status.Name))
	c.JSON(http.StatusOK, status)
}

// POST /api/v1/session/edit-mode
func (s *Server) toggleEditMode(c *gin.Context) {
	if err := s.lm.Session().ToggleEditMode(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lm.Session().GetStatus())
}

// DELETE /api/v1/session
func (s *Server) deleteSessionDashboard(c *gin.Context) {
	if err := s.lm.Session().Delete(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lm.Session().GetStatus())
}
