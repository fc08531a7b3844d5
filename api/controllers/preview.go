package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrine-labs/signage-backend/api/responses"
	"github.com/vitrine-labs/signage-backend/internal/preview"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
	"github.com/vitrine-labs/signage-backend/pkg/logger"
)

func sessionID(r *http.Request) (string, error) {
	sid := strings.TrimSpace(chi.URLParam(r, "sid"))
	if sid == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid session id")
	}
	return sid, nil
}

// PreviewStart snapshots a playlist and opens a preview session.
func PreviewStart(svc preview.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preview service unavailable"))
			return
		}
		playlistID, err := urlUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Start(r.Context(), playlistID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PreviewGet returns the session's current state.
func PreviewGet(svc preview.Service, logg *logger.Logger) http.HandlerFunc {
	return previewAction(svc, logg, func(s preview.Service, r *http.Request, sid string) (*preview.SessionDTO, error) {
		return s.Get(r.Context(), sid)
	})
}

// PreviewNext advances the session one slide.
func PreviewNext(svc preview.Service, logg *logger.Logger) http.HandlerFunc {
	return previewAction(svc, logg, func(s preview.Service, r *http.Request, sid string) (*preview.SessionDTO, error) {
		return s.Next(r.Context(), sid)
	})
}

// PreviewPrev moves the session back one slide.
func PreviewPrev(svc preview.Service, logg *logger.Logger) http.HandlerFunc {
	return previewAction(svc, logg, func(s preview.Service, r *http.Request, sid string) (*preview.SessionDTO, error) {
		return s.Prev(r.Context(), sid)
	})
}

// PreviewToggleAutoplay flips autoplay.
func PreviewToggleAutoplay(svc preview.Service, logg *logger.Logger) http.HandlerFunc {
	return previewAction(svc, logg, func(s preview.Service, r *http.Request, sid string) (*preview.SessionDTO, error) {
		return s.ToggleAutoplay(r.Context(), sid)
	})
}

// PreviewMediaEnded feeds the player's ended event into the session.
func PreviewMediaEnded(svc preview.Service, logg *logger.Logger) http.HandlerFunc {
	return previewAction(svc, logg, func(s preview.Service, r *http.Request, sid string) (*preview.SessionDTO, error) {
		return s.MediaEnded(r.Context(), sid)
	})
}

// PreviewStop closes the session.
func PreviewStop(svc preview.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preview service unavailable"))
			return
		}
		sid, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Stop(r.Context(), sid); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "stopped"})
	}
}

func previewAction(svc preview.Service, logg *logger.Logger, fn func(preview.Service, *http.Request, string) (*preview.SessionDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preview service unavailable"))
			return
		}
		sid, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := fn(svc, r, sid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
