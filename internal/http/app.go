// Package http holds the application container and the module contract the
// router mounts.
package http

import (
	"context"

	"bd_pipeline_backend/platform/config"
	"bd_pipeline_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /api/health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled in cmd/api and handed to router.New.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health may be nil; the health endpoint then skips the database check.
	Health  HealthChecker
	Modules []Module
}
