package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/loopline-app/loopline-api/internal/interface/http"
	"github.com/loopline-app/loopline-api/internal/interface/middleware"
	"github.com/loopline-app/loopline-api/pkg/helpers"
)

// PostModule wires the feed routes. All of them require a session.
type PostModule struct {
	Handler *handlers.PostHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewPostModule(h *handlers.PostHandler, jwt *helpers.JWTManager, rdb *redis.Client) *PostModule {
	return &PostModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/posts", m.Handler.Feed)
		auth.GET("/posts/mine", m.Handler.MyPosts)
		auth.POST("/posts", m.Handler.Create)
		auth.POST("/posts/:postId/comments", m.Handler.AddComment)
		auth.POST("/posts/:postId/comments/:commentId/replies", m.Handler.AddReply)
		auth.POST("/posts/:postId/like", m.Handler.Like)
		auth.POST("/posts/:postId/unlike", m.Handler.Unlike)
	}

	// View recording is high volume and only needs a valid token, not a
	// session lookup.
	viewLimiter := middleware.RateLimit(m.Redis, 600, time.Minute, middleware.KeyByIP(), nil)
	rg.POST("/posts/:postId/view", middleware.JWTAuth(m.JWT), viewLimiter, m.Handler.View)
}
