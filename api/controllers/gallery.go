package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luminastudio/studio-backend/api/responses"
	"github.com/luminastudio/studio-backend/api/validators"
	"github.com/luminastudio/studio-backend/internal/events"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
	"github.com/luminastudio/studio-backend/pkg/logger"
)

// galleryMaxPhotos caps how many photos a single gallery response carries.
const galleryMaxPhotos = 500

// Gallery serves the public, access-coded gallery view. No auth; only
// client-visible events with approved photos resolve.
func Gallery(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", galleryMaxPhotos, 1, galleryMaxPhotos)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Gallery(r.Context(), chi.URLParam(r, "accessCode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if len(result.Photos) > limit {
			result.Photos = result.Photos[:limit]
		}

		responses.WriteSuccess(w, result)
	}
}
