package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/sonder-backend/internal/http/handlers"
	"github.com/yungbote/sonder-backend/internal/http/middleware"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

type RouterDeps struct {
	Log        *logger.Logger
	JWTSecret  string
	Health     *handlers.HealthHandler
	Story      *handlers.StoryHandler
	Feed       *handlers.FeedHandler
	Social     *handlers.SocialHandler
	Received   *handlers.ReceivedHandler
	Transcribe *handlers.TranscribeHandler
}

// NewRouter assembles the gin engine: tracing and logging on everything,
// bearer auth on everything under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("sonder-backend"))
	r.Use(middleware.TraceContext())
	r.Use(middleware.RequestLog(deps.Log))
	r.Use(middleware.CORS())

	r.GET("/healthcheck", deps.Health.Check)

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Log, deps.JWTSecret))
	{
		api.POST("/submit", deps.Story.Submit)
		api.GET("/moderate", deps.Story.ListModeration)
		api.POST("/moderate", deps.Story.Decide)
		api.POST("/process-story", deps.Story.Process)

		api.GET("/feed", deps.Feed.List)
		api.POST("/react", deps.Social.React)
		api.GET("/comment", deps.Social.ListComments)
		api.POST("/comment", deps.Social.CreateComment)
		api.POST("/moderate-comment", deps.Social.ModerateComment)
		api.POST("/report", deps.Social.Report)
		api.POST("/follow", deps.Social.Follow)
		api.GET("/profile/:id", deps.Social.Profile)

		api.GET("/received", deps.Received.List)
		api.POST("/received", deps.Received.MarkRead)

		api.POST("/transcribe", deps.Transcribe.Transcribe)
	}

	return r
}
