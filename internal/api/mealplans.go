package api

import (
	"fmt"
	"net/http"
	"time"

	"pantry-planner/internal/auth"
	"pantry-planner/internal/mealplan"
	"pantry-planner/internal/messaging"

	"github.com/gin-gonic/gin"
)

// getCurrentWeekPlan returns the plan for the week containing today,
// creating it with empty slots on first access. An optional ?date=YYYY-MM-DD
// selects another week.
func (s *Server) getCurrentWeekPlan(c *gin.Context) {
	userID := auth.UserID(c)

	at := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, fmt.Errorf("invalid date %q: %w", raw, err))
			return
		}
		at = parsed
	}

	plan, err := s.planRepo.GetByWeek(c.Request.Context(), userID, at)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if plan == nil {
		plan, err = s.planRepo.CreateWeek(c.Request.Context(), userID, at)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		s.hub.Publish(messaging.Event{Type: "mealplan.created", UserID: userID, Entity: "mealplan", ID: plan.ID})
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) getMealPlan(c *gin.Context) {
	plan, err := s.planRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if plan == nil || plan.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("meal plan not found"))
		return
	}
	c.JSON(http.StatusOK, plan)
}

type assignSlotRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
	Servings *int   `json:"servings,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (s *Server) assignSlot(c *gin.Context) {
	userID := auth.UserID(c)
	slotID := c.Param("slotID")

	plan, err := s.planForSlot(c, slotID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if plan == nil || plan.UserID != userID {
		respondError(c, http.StatusNotFound, fmt.Errorf("meal slot not found"))
		return
	}

	var req assignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	rec, err := s.recipeRepo.Get(c.Request.Context(), req.RecipeID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if rec == nil || rec.UserID != userID {
		respondError(c, http.StatusNotFound, fmt.Errorf("recipe not found"))
		return
	}

	if err := s.planRepo.AssignRecipe(c.Request.Context(), slotID, req.RecipeID, req.Servings, req.Notes); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "mealplan.updated", UserID: userID, Entity: "mealplan", ID: plan.ID})
	c.Status(http.StatusNoContent)
}

func (s *Server) clearSlot(c *gin.Context) {
	userID := auth.UserID(c)
	slotID := c.Param("slotID")

	plan, err := s.planForSlot(c, slotID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if plan == nil || plan.UserID != userID {
		respondError(c, http.StatusNotFound, fmt.Errorf("meal slot not found"))
		return
	}

	if err := s.planRepo.ClearSlot(c.Request.Context(), slotID); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "mealplan.updated", UserID: userID, Entity: "mealplan", ID: plan.ID})
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteMealPlan(c *gin.Context) {
	plan, err := s.planRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if plan == nil || plan.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, fmt.Errorf("meal plan not found"))
		return
	}

	if err := s.planRepo.Delete(c.Request.Context(), plan.ID); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(messaging.Event{Type: "mealplan.deleted", UserID: plan.UserID, Entity: "mealplan", ID: plan.ID})
	c.Status(http.StatusNoContent)
}

func (s *Server) planForSlot(c *gin.Context, slotID string) (*mealplan.MealPlan, error) {
	planID, err := s.planRepo.PlanIDForSlot(c.Request.Context(), slotID)
	if err != nil {
		return nil, err
	}
	if planID == "" {
		return nil, nil
	}
	return s.planRepo.Get(c.Request.Context(), planID)
}
