package router

import "github.com/gin-gonic/gin"

// Module is a feature slice that knows how to mount its own routes.
// Each file in internal/router/modules implements it.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects middleware and modules, then mounts everything under
// the /api group in one pass.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use queues group-level middleware; it is applied before any module routes
// when RegisterAll runs.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll applies queued middleware and mounts every module, in the
// order they were added.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
