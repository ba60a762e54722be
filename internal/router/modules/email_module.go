package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/loopline-app/loopline-api/internal/interface/http"
	"github.com/loopline-app/loopline-api/internal/interface/middleware"
	"github.com/loopline-app/loopline-api/pkg/helpers"
)

type EmailModule struct {
	Handler *handlers.EmailHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewEmailModule(h *handlers.EmailHandler, jwt *helpers.JWTManager, rdb *redis.Client) *EmailModule {
	return &EmailModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(
		middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/email/send", m.Handler.Send)
	}
}
