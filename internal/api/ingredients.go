package api

import (
	"fmt"
	"net/http"

	"pantry-planner/internal/auth"
	"pantry-planner/internal/ingredient"
	"pantry-planner/internal/messaging"

	"github.com/gin-gonic/gin"
)

func (s *Server) listIngredients(c *gin.Context) {
	items, err := s.ingredientRepo.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []ingredient.Ingredient{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createIngredient(c *gin.Context) {
	var ing ingredient.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	ing.ID = ""
	ing.UserID = auth.UserID(c)

	if err := s.ingredientRepo.Create(c.Request.Context(), &ing); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "ingredient.created", UserID: ing.UserID, Entity: "ingredient", ID: ing.ID})
	c.JSON(http.StatusCreated, ing)
}

func (s *Server) getIngredient(c *gin.Context) {
	ing, err := s.ingredientRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if ing == nil || ing.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("ingredient not found"))
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (s *Server) updateIngredient(c *gin.Context) {
	existing, err := s.ingredientRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if existing == nil || existing.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("ingredient not found"))
		return
	}

	var ing ingredient.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	ing.ID = existing.ID
	ing.UserID = existing.UserID
	if ing.DateBought.IsZero() {
		ing.DateBought = existing.DateBought
	}
	if ing.ExpirationDate == nil {
		ing.ExpirationDate = existing.ExpirationDate
	}

	if err := s.ingredientRepo.Update(c.Request.Context(), &ing); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "ingredient.updated", UserID: ing.UserID, Entity: "ingredient", ID: ing.ID})
	c.JSON(http.StatusOK, ing)
}

func (s *Server) deleteIngredient(c *gin.Context) {
	existing, err := s.ingredientRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if existing == nil || existing.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("ingredient not found"))
		return
	}

	if err := s.ingredientRepo.Delete(c.Request.Context(), existing.ID); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "ingredient.deleted", UserID: existing.UserID, Entity: "ingredient", ID: existing.ID})
	c.Status(http.StatusNoContent)
}
