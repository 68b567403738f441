package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

const (
	msgInvalidInvite = "Invalid or expired invite code"
	msgConflict      = "Invite code has already been used or has expired"
	msgUnauthorized  = "You are not permitted to perform this action"
	msgAuthCreate    = "Account could not be created"
	msgEmailTaken    = "An account with this email already exists"
	msgNotFound      = "Resource not found"
	msgInternal      = "Internal server error"
)

// writeServiceError maps the service error taxonomy onto the error envelope.
// Order matters: a failed rollback also matches its cause, and an expired
// consume matches both CONFLICT and INVALID_INVITE.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrRollbackFailure):
		log.Error(op+" failed and was not fully rolled back", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, signupsdk.CodeInternal, msgInternal)
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeValidation, err.Error())
	case errors.Is(err, service.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, signupsdk.CodeConflict, msgConflict)
	case errors.Is(err, service.ErrInvalidInvite):
		httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeInvalidInvite, msgInvalidInvite)
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusForbidden, signupsdk.CodeUnauthorized, msgUnauthorized)
	case errors.Is(err, service.ErrAuthCreate) && errors.Is(err, identity.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, signupsdk.CodeAuthCreate, msgEmailTaken)
	case errors.Is(err, service.ErrAuthCreate):
		log.Warn(op+": identity provider rejected the account", "err", err)
		httpx.WriteError(w, http.StatusBadGateway, signupsdk.CodeAuthCreate, msgAuthCreate)
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, signupsdk.CodeNotFound, msgNotFound)
	default:
		log.Error(op+" failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, signupsdk.CodeInternal, msgInternal)
	}
}

func writeBadBody(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeValidation, "Request body must be valid JSON")
}
