// Package http provides HTTP server infrastructure including the Module
// interface that domain modules implement for route registration.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"leadpulse_backend/platform/config"
	"leadpulse_backend/platform/logger"
)

// Module represents a bounded context that can register its HTTP routes.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the router context.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// V1 is the /api/v1 route group. All routes under it are tenant-scoped
	// through the tenant resolver middleware.
	V1 *gin.RouterGroup
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies. Populated by
// main.go (the composition root) and passed to the router.
type App struct {
	Config  config.HTTPConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}
