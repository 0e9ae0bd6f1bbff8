package rest

import (
	"net/http"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/templates
func (s *Server) listTemplates(c *gin.Context) {
	templates, err := s.lm.Templates().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"count":     len(templates),
	})
}

// GET /api/v1/templates/:name
func (s *Server) getTemplate(c *gin.Context) {
	tpl, err := s.lm.Templates().Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

// POST /api/v1/templates
func (s *Server) createTemplate(c *gin.Context) {
	var req struct {
		Name     string         `json:"name" binding:"required"`
		Settings types.Settings `json:"settings"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tpl := types.Template{Name: req.Name, Settings: req.Settings}
	if err := s.lm.Templates().Save(c.Request.Context(), tpl); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"name":    req.Name,
		"message": "Template saved successfully",
	})
}

// DELETE /api/v1/templates/:name
// Widgets styled from the template keep their resolved copy; deletion
// never reaches into existing dashboards.
func (s *Server) deleteTemplate(c *gin.Context) {
	if err := s.lm.Templates().Delete(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Template deleted successfully",
	})
}
