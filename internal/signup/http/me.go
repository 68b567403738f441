package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

type MeHandler struct {
	Store store.Store
	Roles *service.RoleAuthority
}

// ServeHTTP godoc
//
//	@Summary	Current user
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	signupsdk.MeResponse	"profile and role grants"
//	@Failure	401	{object}	signupsdk.ErrorResponse	"UNAUTHENTICATED"
//	@Failure	404	{object}	signupsdk.ErrorResponse	"NOT_FOUND: no profile for this identity"
//	@Security	BearerAuth
//	@Router		/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromContext(ctx)

	p, err := h.Store.Profiles().GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, signupsdk.CodeNotFound, "Profile not found")
		return
	}
	if err != nil {
		log.Error("failed to load profile", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, signupsdk.CodeInternal, msgInternal)
		return
	}

	roles, err := h.Roles.ListRoles(ctx, userID)
	if err != nil {
		log.Error("failed to load roles", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, signupsdk.CodeInternal, msgInternal)
		return
	}

	out := signupsdk.MeResponse{
		Profile: signupsdk.Profile{
			ID:             p.ID,
			Email:          p.Email,
			FullName:       p.FullName,
			AccountType:    string(p.AccountType),
			HubID:          p.HubID,
			EmailConfirmed: p.EmailConfirmed,
			CreatedAt:      p.CreatedAt,
		},
		Roles: make([]signupsdk.Grant, 0, len(roles)),
	}
	for _, g := range roles {
		out.Roles = append(out.Roles, signupsdk.Grant{Role: string(g.Role()), HubID: g.Hub()})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
