package controllers

import (
	"net/http"

	"github.com/vitrine-labs/signage-backend/api/responses"
	"github.com/vitrine-labs/signage-backend/internal/dashboard"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
	"github.com/vitrine-labs/signage-backend/pkg/logger"
)

// DashboardStats returns the entity count summary for the admin landing page.
func DashboardStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		result, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
