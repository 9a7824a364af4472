// Package handlers contains HTTP handler interfaces, implementations, and middleware.
//
// This package provides:
//   - Health check interfaces and implementations
//   - API key authentication backed by bcrypt hashes
//   - Reusable middleware components
//
// # Health Checks
//
// The HealthChecker interface allows registering multiple named health checks
// that are executed in parallel. Stores that implement Checker register
// themselves under their own name:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddChecker(pgConn)     // "postgres"
//	checker.AddChecker(redisCache) // "redis"
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Warn("health check failed", logger.String("reason", status.Message))
//	}
//
// # Authentication
//
// Keys are configured as bcrypt hashes (see `roster hash-key`):
//
//	auth := handlers.NewAPIKeyAuth("X-API-Key", cfg.Auth.APIKeyHashes)
//	mux.Handle("POST /admin", auth.Middleware(adminHandler))
//
// Clients send the key in X-API-Key or as "Authorization: Bearer <key>".
package handlers
