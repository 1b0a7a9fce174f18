// Copyright (c) 2026 Katalog. All rights reserved.

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/EarnestL/k-atalog/internal/platform/constants"
	"github.com/EarnestL/k-atalog/internal/platform/respond"
)

const readinessCheckTimeout = 3 * time.Second

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
// A nil checker is skipped.
type HealthDependencies struct {
	// Backend names the catalog backend serving reads ("postgres" or "snapshot").
	Backend string

	// CheckCatalog confirms the active backend can answer.
	CheckCatalog func(context.Context) error

	// CheckCache pings the Redis client.
	CheckCache func(context.Context) error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldService: constants.AppName,
	})
}

func (handler *healthHandler) check(ctx context.Context, name string, checker func(context.Context) error) checkResult {
	result := checkResult{Name: name, IsOK: true}

	checkCtx, cancel := context.WithTimeout(ctx, readinessCheckTimeout)
	defer cancel()

	if err := checker(checkCtx); err != nil {
		result.IsOK = false
		result.Error = err.Error()
		handler.logger.Error("readiness_check_failed", slog.String("dependency", name), slog.Any("error", err))
	}
	return result
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, 2)

	if handler.dependencies.CheckCatalog != nil {
		results = append(results, handler.check(request.Context(), handler.dependencies.Backend, handler.dependencies.CheckCatalog))
	}
	if handler.dependencies.CheckCache != nil {
		results = append(results, handler.check(request.Context(), "redis", handler.dependencies.CheckCache))
	}

	responseStatus := "ready"
	httpStatus := http.StatusOK
	for _, result := range results {
		if !result.IsOK {
			responseStatus = "degraded"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: responseStatus,
		"backend":             handler.dependencies.Backend,
		constants.FieldChecks: results,
	}})
}
