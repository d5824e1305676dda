package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/luminastudio/studio-backend/api/responses"
	"github.com/luminastudio/studio-backend/pkg/config"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
	"github.com/luminastudio/studio-backend/pkg/logger"
)

const readyCheckTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Studio-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness by pinging each named dependency.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Studio-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

// ReadyDeps builds the dependency map for HealthReady.
func ReadyDeps(db, redis, gcs pinger) map[string]pinger {
	return map[string]pinger{
		"database": db,
		"redis":    redis,
		"storage":  gcs,
	}
}
