package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/loopline-app/loopline-api/internal/interface/http"
	"github.com/loopline-app/loopline-api/internal/interface/middleware"
	"github.com/loopline-app/loopline-api/pkg/helpers"
)

type UploadModule struct {
	Handler *handlers.UploadHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUploadModule(h *handlers.UploadHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UploadModule {
	return &UploadModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UploadModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/uploader/signed-upload-url", m.Handler.SignedUploadURL)
	}
}
