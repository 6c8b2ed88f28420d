package controllers

import (
	"context"
	"net/http"

	"github.com/forkandfield/catersync/api/responses"
	"github.com/forkandfield/catersync/pkg/config"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
	"github.com/forkandfield/catersync/pkg/logger"
)

// Pinger exposes the health-check surface of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CaterSync-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP Pinger) http.HandlerFunc {
	checks := []struct {
		name   string
		pinger Pinger
	}{
		{"database", dbP},
		{"redis", redisP},
		{"pubsub", pubsubP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CaterSync-Env", cfg.App.Env)

		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(r.Context()); err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" not ready")
				responses.WriteError(r.Context(), logg, w, wrapped)
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
