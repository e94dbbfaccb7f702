package api

import (
	"fmt"
	"net/http"
	"time"

	"cloudnative/fitapp/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   service.UserService
	exportService service.ExportService
}

func NewUserHandler(userService service.UserService, exportService service.ExportService) *UserHandler {
	return &UserHandler{userService: userService, exportService: exportService}
}

type StreakGoalRequest struct {
	StreakGoal *int `json:"streakGoal" binding:"required"`
}

type BodyweightRequest struct {
	Weight float64   `json:"bodyWeight" binding:"required,gt=0"`
	Date   time.Time `json:"date"`
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateStreakGoal handles PUT /api/v1/users/me/streak-goal
func (h *UserHandler) UpdateStreakGoal(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}
	var req StreakGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	user, err := h.userService.UpdateStreakGoal(c.Request.Context(), userID, *req.StreakGoal)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// CompletedWorkout handles POST /api/v1/users/me/completed-workouts
func (h *UserHandler) CompletedWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}
	user, err := h.userService.CompletedWorkout(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// AddBodyweight handles POST /api/v1/users/me/bodyweight
func (h *UserHandler) AddBodyweight(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}
	var req BodyweightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	entry, err := h.userService.AddBodyweight(c.Request.Context(), userID, req.Weight, req.Date)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetBodyweight handles GET /api/v1/users/me/bodyweight
func (h *UserHandler) GetBodyweight(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}
	entries, err := h.userService.GetBodyweight(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ExportWorkouts handles POST /api/v1/users/me/exports
func (h *UserHandler) ExportWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}
	result, err := h.exportService.ExportUserWorkouts(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
