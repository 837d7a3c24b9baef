package api

import (
	"fmt"
	"net/http"

	"pantry-planner/internal/auth"
	"pantry-planner/internal/messaging"
	"pantry-planner/internal/recipe"

	"github.com/gin-gonic/gin"
)

func (s *Server) listRecipes(c *gin.Context) {
	recipes, err := s.recipeRepo.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

func (s *Server) createRecipe(c *gin.Context) {
	var rec recipe.Recipe
	if err := c.ShouldBindJSON(&rec); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	rec.ID = ""
	rec.UserID = auth.UserID(c)

	if err := s.recipeRepo.Save(c.Request.Context(), &rec); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "recipe.created", UserID: rec.UserID, Entity: "recipe", ID: rec.ID})
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) getRecipe(c *gin.Context) {
	rec, err := s.recipeRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if rec == nil || rec.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("recipe not found"))
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) updateRecipe(c *gin.Context) {
	existing, err := s.recipeRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if existing == nil || existing.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("recipe not found"))
		return
	}

	var rec recipe.Recipe
	if err := c.ShouldBindJSON(&rec); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	rec.ID = existing.ID
	rec.UserID = existing.UserID
	rec.CreatedAt = existing.CreatedAt

	if err := s.recipeRepo.Save(c.Request.Context(), &rec); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "recipe.updated", UserID: rec.UserID, Entity: "recipe", ID: rec.ID})
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteRecipe(c *gin.Context) {
	existing, err := s.recipeRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if existing == nil || existing.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("recipe not found"))
		return
	}

	if err := s.recipeRepo.Delete(c.Request.Context(), existing.ID); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "recipe.deleted", UserID: existing.UserID, Entity: "recipe", ID: existing.ID})
	c.Status(http.StatusNoContent)
}

type clipRequest struct {
	URL string `json:"url" binding:"required"`
}

// clipRecipe imports a recipe from a URL. The result is returned to the
// client unsaved; creating it is a separate, explicit request.
func (s *Server) clipRecipe(c *gin.Context) {
	if s.clipper == nil {
		respondError(c, http.StatusServiceUnavailable, fmt.Errorf("recipe clipping is not configured"))
		return
	}

	var req clipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	rec, err := s.clipper.ClipURL(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
