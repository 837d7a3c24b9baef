package api

import (
	"fmt"
	"net/http"

	"pantry-planner/internal/auth"
	"pantry-planner/internal/messaging"
	"pantry-planner/internal/shopping"

	"github.com/gin-gonic/gin"
)

type generateListRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
	Name   string `json:"name,omitempty"`
	Save   bool   `json:"save,omitempty"`
}

// generateShoppingList derives a list from a meal plan against the current
// inventory snapshot. With save set the result is persisted as a named list.
func (s *Server) generateShoppingList(c *gin.Context) {
	userID := auth.UserID(c)

	var req generateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	plan, err := s.planRepo.Get(c.Request.Context(), req.PlanID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if plan == nil || plan.UserID != userID {
		respondError(c, http.StatusNotFound, fmt.Errorf("meal plan not found"))
		return
	}

	var recipeIDs []string
	for _, slot := range plan.Slots {
		if slot.RecipeID != nil {
			recipeIDs = append(recipeIDs, *slot.RecipeID)
		}
	}
	recipes, err := s.recipeRepo.GetByIDs(c.Request.Context(), recipeIDs)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	inventory, err := s.ingredientRepo.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	items := shopping.Generate(plan.Slots, recipes, inventory)

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("Week of %s", plan.WeekStart.Format("Jan 2, 2006"))
	}
	list := shopping.ShoppingList{
		UserID:    userID,
		Name:      name,
		WeekStart: &plan.WeekStart,
		Items:     items,
	}

	if req.Save {
		if _, err := s.shoppingRepo.Create(c.Request.Context(), &list); err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		s.hub.Publish(messaging.Event{Type: "shoppinglist.created", UserID: userID, Entity: "shoppinglist", ID: list.ID})
		c.JSON(http.StatusCreated, list)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) listShoppingLists(c *gin.Context) {
	lists, err := s.shoppingRepo.ListByUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if lists == nil {
		lists = []shopping.ShoppingList{}
	}
	c.JSON(http.StatusOK, lists)
}

func (s *Server) getShoppingList(c *gin.Context) {
	list, err := s.shoppingRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if list == nil || list.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("shopping list not found"))
		return
	}
	c.JSON(http.StatusOK, list)
}

type updateItemsRequest struct {
	Items []shopping.ListItem `json:"items" binding:"required"`
}

// updateShoppingListItems replaces the list's items, carrying purchase
// state and price edits from the client.
func (s *Server) updateShoppingListItems(c *gin.Context) {
	list, err := s.shoppingRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if list == nil || list.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("shopping list not found"))
		return
	}

	var req updateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.shoppingRepo.UpdateItems(c.Request.Context(), list.ID, req.Items); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	list.Items = req.Items
	s.hub.Publish(messaging.Event{Type: "shoppinglist.updated", UserID: list.UserID, Entity: "shoppinglist", ID: list.ID})
	c.JSON(http.StatusOK, list)
}

// shareShoppingList pushes the list to the configured Telegram chat.
func (s *Server) shareShoppingList(c *gin.Context) {
	if s.notifier == nil {
		respondError(c, http.StatusServiceUnavailable, fmt.Errorf("list sharing is not configured"))
		return
	}

	list, err := s.shoppingRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if list == nil || list.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("shopping list not found"))
		return
	}

	if err := s.notifier.ShoppingList(list); err != nil {
		respondError(c, http.StatusBadGateway, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteShoppingList(c *gin.Context) {
	list, err := s.shoppingRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if list == nil || list.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("shopping list not found"))
		return
	}

	if err := s.shoppingRepo.Delete(c.Request.Context(), list.ID); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "shoppinglist.deleted", UserID: list.UserID, Entity: "shoppinglist", ID: list.ID})
	c.Status(http.StatusNoContent)
}
