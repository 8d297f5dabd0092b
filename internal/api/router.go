package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/apexquest/apexquest/internal/api/handler"
	"github.com/apexquest/apexquest/internal/api/middleware"
	"github.com/apexquest/apexquest/internal/auth"
	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/pkg/response"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("posttag", func(fl validator.FieldLevel) bool {
			return model.PostTag(fl.Field().String()).Valid()
		})
	}
}

// NewRouter wires every route. sentryEnabled toggles the panic-reporting
// middleware; recovery itself is always on.
func NewRouter(h *handler.Handler, sessions *auth.SessionManager, sentryEnabled bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if sentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(otelgin.Middleware("apexquest"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) { response.Success(c, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", h.Login)

	authed := v1.Group("")
	authed.Use(middleware.Session(sessions))
	{
		authed.GET("/me", h.Me)
		authed.PATCH("/me", h.UpdateProfile)
		authed.GET("/ws", h.Websocket)

		authed.GET("/channels", h.ListChannels)
		authed.GET("/channels/mine", h.ListMyChannels)
		authed.POST("/channels/:id/join", h.JoinChannel)
		authed.POST("/channels/:id/leave", h.LeaveChannel)
		authed.GET("/channels/:id/posts", h.ListChannelPosts)

		authed.POST("/posts", h.CreatePost)
		authed.GET("/posts/:id", h.GetPost)
		authed.DELETE("/posts/:id", h.DeletePost)
		authed.POST("/posts/:id/like", h.ToggleLike)
		authed.POST("/posts/:id/flag", h.FlagPost)
		authed.GET("/posts/:id/replies", h.ListReplies)
		authed.POST("/posts/:id/replies", h.CreateReply)
		authed.DELETE("/replies/:id", h.DeleteReply)
		authed.POST("/replies/:id/flag", h.FlagReply)

		authed.GET("/notifications", h.ListNotifications)
		authed.GET("/notifications/unread", h.UnreadCount)
		authed.POST("/notifications/:id/read", h.MarkNotificationRead)

		authed.POST("/channel-requests", h.CreateChannelRequest)
		authed.GET("/channel-requests/mine", h.ListMyChannelRequests)
		authed.PATCH("/channel-requests/:id", h.UpdateChannelRequest)
		authed.DELETE("/channel-requests/:id", h.CancelChannelRequest)

		authed.POST("/agent/ask", h.AskAgent)
		authed.GET("/agent/usage", h.AgentUsage)
	}

	staff := authed.Group("/staff")
	staff.Use(middleware.RequireStaff())
	{
		staff.GET("", h.ListStaff)
		staff.GET("/users", h.ListUsers)
		staff.GET("/users/:id/history", h.UserHistory)
		staff.POST("/warn", h.WarnUser)
		staff.POST("/flags/:id/dismiss", h.DismissFlag)
		staff.GET("/flagged", h.FlaggedContent)
		staff.GET("/analytics", h.Analytics)
		staff.POST("/announce", h.Announce)
		staff.POST("/message", h.StaffMessage)

		staff.POST("/moderation/run", h.RunModeration)
		staff.GET("/moderation/reports", h.ModerationReports)
		staff.GET("/moderation/activity", h.AgentActivity)
	}

	admin := staff.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/channels", h.CreateChannel)
		admin.POST("/ban", h.BanUser)
		admin.POST("/users/:id/unban", h.UnbanUser)
		admin.GET("/channel-requests", h.ListPendingChannelRequests)
		admin.POST("/channel-requests/:id/approve", h.ApproveChannelRequest)
		admin.POST("/channel-requests/:id/reject", h.RejectChannelRequest)
		admin.POST("/channel-requests/:id/needs-info", h.ChannelRequestNeedsInfo)
		admin.POST("/moderation/escalated", h.RunEscalated)
	}

	return r
}
