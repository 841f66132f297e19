package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.LoggerWithWriter(h.logger.Writer()), gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")

	timer := api.Group("/timer")
	timer.GET("", h.GetTimer)
	timer.POST("/start", h.Start)
	timer.POST("/pause", h.Pause)
	timer.POST("/resume", h.Resume)
	timer.POST("/reset", h.Reset)
	timer.POST("/cycle/reset", h.ResetCycle)
	timer.PUT("/task", h.SetTask)
	timer.PUT("/phase", h.SelectPhase)

	tasks := api.Group("/tasks")
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.PUT("/:id/completed", h.SetTaskCompleted)
	tasks.DELETE("/:id", h.DeleteTask)

	api.GET("/sessions", h.ListSessions)
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)

	return engine
}
