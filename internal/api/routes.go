package api

import (
	"net/http"

	"cloudnative/fitapp/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth     service.AuthService
	Workouts service.WorkoutService
	Exercise service.ExerciseService
	Sets     service.SetService
	Users    service.UserService
	Export   service.ExportService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, services Services, metricsHandler http.Handler) {
	authHandler := NewAuthHandler(services.Auth)
	workoutHandler := NewWorkoutHandler(services.Workouts)
	exerciseHandler := NewExerciseHandler(services.Exercise, services.Sets)
	userHandler := NewUserHandler(services.Users, services.Export)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		userGroup := protected.Group("/users/me")
		{
			userGroup.GET("", userHandler.GetMe)
			userGroup.PUT("/streak-goal", userHandler.UpdateStreakGoal)
			userGroup.POST("/completed-workouts", userHandler.CompletedWorkout)
			userGroup.POST("/bodyweight", userHandler.AddBodyweight)
			userGroup.GET("/bodyweight", userHandler.GetBodyweight)
			userGroup.POST("/exports", userHandler.ExportWorkouts)
		}

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.GetMyWorkouts)
			workoutGroup.GET("/:workoutId", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:workoutId", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/:workoutId/exercises", workoutHandler.AddExercise)
			workoutGroup.GET("/:workoutId/exercises", workoutHandler.GetExercises)
			workoutGroup.DELETE("/:workoutId/exercises/:exerciseId", workoutHandler.DeleteExercise)
		}

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.GetMyExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:exerciseId", exerciseHandler.UpdateExercise)
			exerciseGroup.POST("/:exerciseId/auto-increase", exerciseHandler.AutoIncrease)
			exerciseGroup.POST("/:exerciseId/auto-decrease", exerciseHandler.AutoDecrease)
			exerciseGroup.GET("/:exerciseId/progress", exerciseHandler.GetProgress)
			exerciseGroup.POST("/:exerciseId/sets", exerciseHandler.AddSet)
		}

		setGroup := protected.Group("/sets")
		{
			setGroup.GET("/:setId", exerciseHandler.GetSet)
			setGroup.PUT("/:setId", exerciseHandler.UpdateSet)
			setGroup.DELETE("/:setId", exerciseHandler.DeleteSet)
		}
	}
}
