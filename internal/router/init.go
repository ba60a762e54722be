package router

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-api/config"
	"github.com/loopline-app/loopline-api/internal/application"
	"github.com/loopline-app/loopline-api/internal/infrastructure/postgres"
	handlers "github.com/loopline-app/loopline-api/internal/interface/http"
	"github.com/loopline-app/loopline-api/internal/router/modules"
	"github.com/loopline-app/loopline-api/pkg/helpers"
)

// Deps carries all shared infrastructure the modules need. Everything is
// passed explicitly so tests can substitute pieces without touching globals.
type Deps struct {
	Cfg    *config.Config
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
	GCS    *storage.Client
	ES     *elasticsearch.Client
	Pub    *helpers.RabbitPublisher
}

// InitModules builds the repository/service/handler graph from Deps and
// registers every feature module with the registry. Called once at startup.
func InitModules(r *Registry, d Deps) {
	userRepo := postgres.NewUserRepository(d.Pool)
	postRepo := postgres.NewPostRepository(d.Pool)

	userSvc := application.NewUserService(userRepo, d.JWT, d.Redis, d.Logger, d.Pub, d.Cfg, d.ES, d.Cfg.ESUsersIndex)
	feedSvc := application.NewFeedService(postRepo, userRepo, d.Logger)
	uploadSvc := application.NewUploadService(d.GCS, d.Cfg.GCSBucket, d.Cfg.UploadURLTTL)

	authHandler := handlers.NewAuthHandler(userSvc, d.Logger, d.Cfg.CookieDomain, d.Cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, uploadSvc, d.Logger)
	postHandler := handlers.NewPostHandler(feedSvc, d.Logger)
	uploadHandler := handlers.NewUploadHandler(uploadSvc, d.Logger)
	emailHandler := handlers.NewEmailHandler(d.Pub, d.Logger, d.Cfg)

	r.Add(modules.NewAuthModule(authHandler, d.JWT, d.Redis))
	r.Add(modules.NewUserModule(userHandler, d.JWT, d.Redis))
	r.Add(modules.NewPostModule(postHandler, d.JWT, d.Redis))
	r.Add(modules.NewUploadModule(uploadHandler, d.JWT, d.Redis))
	r.Add(modules.NewEmailModule(emailHandler, d.JWT, d.Redis))
	r.Add(modules.NewDebugModule(d.Redis))
}
