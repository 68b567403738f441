package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

type BootstrapHandler struct {
	Bootstrap *service.Bootstrap
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the signup service
//	@Description	Creates the first super_admin and optionally seeds subscription plans. Only available when a
//	@Description	bootstrap token is configured, and only until a super_admin exists.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token for authorization"
//	@Param			request				body		signupsdk.BootstrapRequest	true	"Bootstrap configuration"
//	@Success		201					{object}	signupsdk.BootstrapResponse	"super_admin user id and seeded plan ids"
//	@Failure		400					{object}	signupsdk.ErrorResponse		"Invalid request body or validation failed"
//	@Failure		401					{object}	signupsdk.ErrorResponse		"Missing or invalid bootstrap token"
//	@Failure		404					{object}	signupsdk.ErrorResponse		"Bootstrap not enabled (no token configured)"
//	@Failure		409					{object}	signupsdk.ErrorResponse		"Already bootstrapped"
//	@Failure		500					{object}	signupsdk.ErrorResponse		"Failed to create the super_admin"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("Starting to bootstrap")

	// 1. Check if enabled
	if h.Bootstrap.Token == "" {
		httpx.WriteError(w, http.StatusNotFound, signupsdk.CodeNotFound, "Bootstrap endpoint is not enabled")
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, signupsdk.CodeUnauthenticated,
			"Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	// 3. Parse request body
	var req signupsdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	// 4. Perform bootstrap
	res, err := h.Bootstrap.Run(r.Context(), token, domain.BootstrapData{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Plans:    req.Plans,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteError(w, http.StatusUnauthorized, signupsdk.CodeUnauthenticated, "Invalid bootstrap token")
		case errors.Is(err, service.ErrBootstrapAlready):
			httpx.WriteError(w, http.StatusConflict, signupsdk.CodeConflict, "System has already been bootstrapped")
		default:
			writeServiceError(w, r, "bootstrap", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, signupsdk.BootstrapResponse{
		UserID:            res.UserID,
		GeneratedPassword: res.GeneratedPassword,
		PlanIDs:           res.PlanIDs,
	})
}
