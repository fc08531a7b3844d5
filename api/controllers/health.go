package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/vitrine-labs/signage-backend/api/responses"
	"github.com/vitrine-labs/signage-backend/pkg/config"
	"github.com/vitrine-labs/signage-backend/pkg/db"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
	"github.com/vitrine-labs/signage-backend/pkg/logger"
	"github.com/vitrine-labs/signage-backend/pkg/redis"
	"github.com/vitrine-labs/signage-backend/pkg/storage/gcs"
)

const readyCheckTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Signage-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency. Nil pingers are skipped so the
// endpoint works in partial wiring (tests, local tooling).
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Signage-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false

		run := func(name string, ping func(context.Context) error) {
			if ping == nil {
				checks[name] = "skipped"
				return
			}
			if err := ping(ctx); err != nil {
				checks[name] = "down"
				failed = true
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "health.check_failed", err)
				}
				return
			}
			checks[name] = "up"
		}

		if dbP != nil {
			run("postgres", dbP.Ping)
		} else {
			run("postgres", nil)
		}
		if redisP != nil {
			run("redis", redisP.Ping)
		} else {
			run("redis", nil)
		}
		if gcsP != nil {
			run("gcs", gcsP.Ping)
		} else {
			run("gcs", nil)
		}

		if failed {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
