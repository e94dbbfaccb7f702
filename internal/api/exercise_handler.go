package api

import (
	"context"
	"fmt"
	"net/http"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise and set service dependencies.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	setService      service.SetService
}

func NewExerciseHandler(exerciseService service.ExerciseService, setService service.SetService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, setService: setService}
}

// --- DTOs for API (Data Transfer Objects) ---

// UpdateExerciseRequest carries the full exercise state. The progression
// parameters are flattened into the body as autoIncrease* fields.
type UpdateExerciseRequest struct {
	Name         string `json:"name" binding:"required"`
	Type         string `json:"type"`
	Rest         int    `json:"rest" binding:"gte=0"`
	AutoIncrease bool   `json:"autoIncrease"`
	domain.Progression
	Sets []domain.Set `json:"sets"`
}

type SetRequest struct {
	Reps     int     `json:"reps" binding:"gte=0"`
	Weight   float64 `json:"weight" binding:"gte=0"`
	Duration int     `json:"duration" binding:"gte=0"`
}

func (r SetRequest) toDomain() domain.Set {
	return domain.Set{Reps: r.Reps, Weight: r.Weight, Duration: r.Duration}
}

// GetMyExercises handles GET /api/v1/exercises
func (h *ExerciseHandler) GetMyExercises(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}
	exercises, err := h.exerciseService.GetExercisesByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExercise handles GET /api/v1/exercises/:exerciseId
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), exerciseID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise handles PUT /api/v1/exercises/:exerciseId
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	typ, err := domain.ParseWorkoutType(req.Type)
	if err != nil {
		abortWithServiceError(c, service.ErrInvalidType)
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), exerciseID, service.ExerciseUpdate{
		Name:         req.Name,
		Type:         typ,
		Rest:         req.Rest,
		AutoIncrease: req.AutoIncrease,
		Progression:  req.Progression,
		Sets:         req.Sets,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// AutoIncrease handles POST /api/v1/exercises/:exerciseId/auto-increase
func (h *ExerciseHandler) AutoIncrease(c *gin.Context) {
	h.step(c, h.exerciseService.AutoIncrease)
}

// AutoDecrease handles POST /api/v1/exercises/:exerciseId/auto-decrease
func (h *ExerciseHandler) AutoDecrease(c *gin.Context) {
	h.step(c, h.exerciseService.AutoDecrease)
}

func (h *ExerciseHandler) step(c *gin.Context, apply func(context.Context, domain.ID) (*domain.Exercise, error)) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	exercise, err := apply(c.Request.Context(), exerciseID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// GetProgress handles GET /api/v1/exercises/:exerciseId/progress
func (h *ExerciseHandler) GetProgress(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	progress, err := h.exerciseService.GetProgress(c.Request.Context(), exerciseID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// AddSet handles POST /api/v1/exercises/:exerciseId/sets
func (h *ExerciseHandler) AddSet(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	set, err := h.setService.AddSetToExercise(c.Request.Context(), exerciseID, req.toDomain())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

// GetSet handles GET /api/v1/sets/:setId
func (h *ExerciseHandler) GetSet(c *gin.Context) {
	setID, ok := pathID(c, "setId")
	if !ok {
		return
	}
	set, err := h.setService.GetSet(c.Request.Context(), setID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

// UpdateSet handles PUT /api/v1/sets/:setId
func (h *ExerciseHandler) UpdateSet(c *gin.Context) {
	setID, ok := pathID(c, "setId")
	if !ok {
		return
	}
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	set, err := h.setService.UpdateSet(c.Request.Context(), setID, req.toDomain())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

// DeleteSet handles DELETE /api/v1/sets/:setId
func (h *ExerciseHandler) DeleteSet(c *gin.Context) {
	setID, ok := pathID(c, "setId")
	if !ok {
		return
	}
	if err := h.setService.DeleteSet(c.Request.Context(), setID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
