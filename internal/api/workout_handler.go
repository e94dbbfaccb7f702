package api

import (
	"fmt"
	"net/http"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type CreateWorkoutRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateWorkoutRequest replaces name and rest. When exerciseIds is present
// it becomes the exact exercise list, in that order.
type UpdateWorkoutRequest struct {
	Name        string      `json:"name" binding:"required"`
	Rest        int         `json:"rest" binding:"gte=0"`
	ExerciseIDs []domain.ID `json:"exerciseIds"`
}

type AddExerciseRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
	Goal string `json:"goal"`
}

// CreateWorkout handles POST /api/v1/workouts
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), req.Name, userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// GetMyWorkouts handles GET /api/v1/workouts
func (h *WorkoutHandler) GetMyWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}

	workouts, err := h.workoutService.GetWorkoutsByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// GetWorkout handles GET /api/v1/workouts/:workoutId
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	workout, err := h.workoutService.GetWorkout(c.Request.Context(), workoutID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// UpdateWorkout handles PUT /api/v1/workouts/:workoutId
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), workoutID, service.WorkoutUpdate{
		Name:        req.Name,
		Rest:        req.Rest,
		ExerciseIDs: req.ExerciseIDs,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// DeleteWorkout handles DELETE /api/v1/workouts/:workoutId
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteWorkout(c.Request.Context(), workoutID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise handles POST /api/v1/workouts/:workoutId/exercises
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	typ, err := domain.ParseWorkoutType(req.Type)
	if err != nil {
		abortWithServiceError(c, service.ErrInvalidType)
		return
	}
	goal, err := domain.ParseGoal(req.Goal)
	if err != nil {
		abortWithServiceError(c, service.ErrInvalidGoal)
		return
	}

	exercise, err := h.workoutService.AddExerciseToWorkout(c.Request.Context(), workoutID, service.NewExercise{
		Name: req.Name,
		Type: typ,
		Goal: goal,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// GetExercises handles GET /api/v1/workouts/:workoutId/exercises
func (h *WorkoutHandler) GetExercises(c *gin.Context) {
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	exercises, err := h.workoutService.GetExercisesByWorkout(c.Request.Context(), workoutID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// DeleteExercise handles DELETE /api/v1/workouts/:workoutId/exercises/:exerciseId
func (h *WorkoutHandler) DeleteExercise(c *gin.Context) {
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	workout, err := h.workoutService.DeleteExerciseFromWorkout(c.Request.Context(), workoutID, exerciseID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}
