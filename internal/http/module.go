package http

import (
	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module may mount on. Both live
// under /api/v1.
type RouterContext struct {
	// Public has no authentication.
	Public *gin.RouterGroup
	// Protected requires a valid bearer token; handlers can rely on
	// httpkit.CurrentActor.
	Protected *gin.RouterGroup
}
