package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
)

type RolesHandler struct {
	Roles *service.RoleAuthority
}

// HandleAssign godoc
//
//	@Summary		Assign a role
//	@Description	Grants entrepreneur or hub_manager (hub required), admin (hub optional) or super_admin (global).
//	@Description	Repeating a grant is a successful no-op with changed=false. Every call is audited.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupsdk.RoleRequest	true	"Role change"
//	@Success		200		{object}	signupsdk.RoleResponse
//	@Failure		400		{object}	signupsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		403		{object}	signupsdk.ErrorResponse	"UNAUTHORIZED"
//	@Security		BearerAuth
//	@Router			/v1/roles [post].
func (h *RolesHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.Roles.AssignRole)
}

// HandleRemove godoc
//
//	@Summary	Remove a role
//	@Tags		Roles
//	@Accept		json
//	@Produce	json
//	@Param		request	body		signupsdk.RoleRequest	true	"Role change"
//	@Success	200		{object}	signupsdk.RoleResponse
//	@Failure	400		{object}	signupsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure	403		{object}	signupsdk.ErrorResponse	"UNAUTHORIZED"
//	@Security	BearerAuth
//	@Router		/v1/roles [delete].
func (h *RolesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.Roles.RemoveRole)
}

func (h *RolesHandler) handle(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, ch service.RoleChange) (bool, error),
) {
	var req signupsdk.RoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}
	role, err := domain.ParseRoleName(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeValidation, "unknown role")
		return
	}

	changed, err := apply(r.Context(), service.RoleChange{
		TargetUserID: req.UserID,
		Role:         role,
		HubID:        req.HubID,
		RequesterID:  httpx.UserIDFromContext(r.Context()),
		Reason:       req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, "role change", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, signupsdk.RoleResponse{Changed: changed})
}
