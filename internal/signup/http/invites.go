package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
)

type InvitesHandler struct {
	Invites *service.InviteCodeRegistry
}

// HandleValidate godoc
//
//	@Summary		Validate an invite code
//	@Description	Public, read-only check of an invite code. Unknown, used and expired codes are indistinguishable.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			code	query		string							false	"Invite code (GET)"
//	@Param			request	body		signupsdk.ValidateInviteRequest	false	"Invite code (POST)"
//	@Success		200		{object}	signupsdk.ValidateInviteResponse
//	@Failure		500		{object}	signupsdk.ErrorResponse
//	@Router			/v1/invite-codes/validate [get]
//	@Router			/v1/invite-codes/validate [post].
func (h *InvitesHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if r.Method == http.MethodPost {
		var req signupsdk.ValidateInviteRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			writeBadBody(w)
			return
		}
		code = req.Code
	}

	v, err := h.Invites.Validate(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, "validate invite", err)
		return
	}

	out := signupsdk.ValidateInviteResponse{Valid: v.Valid}
	if v.Valid {
		out.Invite = &signupsdk.InvitePreview{
			Code:         v.Invite.Code,
			AccountType:  string(v.Invite.AccountType),
			InvitedEmail: v.Invite.InvitedEmail,
			HubID:        v.Invite.HubID,
			ExpiresAt:    v.Invite.ExpiresAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleIssue godoc
//
//	@Summary		Issue an invite code
//	@Description	Requires super_admin, admin or hub_manager. The invite is scoped to the caller's hub; only a
//	@Description	super_admin may choose hub_id or issue organization invites. An invited email receives the code.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupsdk.InviteRequest	true	"Invite request"
//	@Success		201		{object}	signupsdk.Invite
//	@Failure		400		{object}	signupsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		401		{object}	signupsdk.ErrorResponse	"UNAUTHENTICATED"
//	@Failure		403		{object}	signupsdk.ErrorResponse	"UNAUTHORIZED"
//	@Failure		500		{object}	signupsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invite-codes [post].
func (h *InvitesHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req signupsdk.InviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}
	if req.TTLSeconds < 0 {
		httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeValidation, "ttl_seconds must not be negative")
		return
	}

	invite, err := h.Invites.Issue(r.Context(), service.IssueRequest{
		CreatorID:    httpx.UserIDFromContext(r.Context()),
		AccountType:  domain.AccountType(req.AccountType),
		InvitedEmail: req.InvitedEmail,
		HubID:        req.HubID,
		TTL:          time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		writeServiceError(w, r, "issue invite", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toSDKInvite(invite))
}

// HandleList godoc
//
//	@Summary		List invite codes
//	@Description	super_admin sees every invite (hub-less ones unless hub_id is given); hub staff see their hubs' invites.
//	@Tags			Invitations
//	@Produce		json
//	@Param			hub_id	query		string	false	"Hub filter"
//	@Param			limit	query		int		false	"Page size (default 50, max 200)"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	signupsdk.InviteList
//	@Failure		400		{object}	signupsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		403		{object}	signupsdk.ErrorResponse	"UNAUTHORIZED"
//	@Security		BearerAuth
//	@Router			/v1/invite-codes [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := queryInt(q.Get("limit"))
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeValidation, "limit must be a non-negative integer")
		return
	}
	offset, ok := queryInt(q.Get("offset"))
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, signupsdk.CodeValidation, "offset must be a non-negative integer")
		return
	}

	invites, err := h.Invites.List(r.Context(), httpx.UserIDFromContext(r.Context()), q.Get("hub_id"), limit, offset)
	if err != nil {
		writeServiceError(w, r, "list invites", err)
		return
	}

	out := signupsdk.InviteList{Invites: make([]signupsdk.Invite, 0, len(invites)), Limit: limit, Offset: offset}
	for _, inv := range invites {
		out.Invites = append(out.Invites, toSDKInvite(inv))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete godoc
//
//	@Summary	Delete an invite code
//	@Tags		Invitations
//	@Param		id	path	string	true	"Invite id"
//	@Success	204
//	@Failure	403	{object}	signupsdk.ErrorResponse	"UNAUTHORIZED"
//	@Failure	404	{object}	signupsdk.ErrorResponse	"NOT_FOUND"
//	@Security	BearerAuth
//	@Router		/v1/invite-codes/{id} [delete].
func (h *InvitesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Invites.Delete(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context())); err != nil {
		writeServiceError(w, r, "delete invite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSend godoc
//
//	@Summary		Re-send an invite
//	@Description	Re-dispatches the invite notification to its invited email. Delivery is asynchronous.
//	@Tags			Invitations
//	@Accept			json
//	@Param			request	body	signupsdk.SendInviteRequest	true	"Invite code or invited email"
//	@Success		202
//	@Failure		400	{object}	signupsdk.ErrorResponse	"VALIDATION_ERROR or INVALID_INVITE"
//	@Failure		403	{object}	signupsdk.ErrorResponse	"UNAUTHORIZED"
//	@Failure		404	{object}	signupsdk.ErrorResponse	"NOT_FOUND"
//	@Security		BearerAuth
//	@Router			/v1/invite-codes/send [post].
func (h *InvitesHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req signupsdk.SendInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	if _, err := h.Invites.Send(r.Context(), httpx.UserIDFromContext(r.Context()), req.Code, req.Email); err != nil {
		writeServiceError(w, r, "send invite", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleConsume godoc
//
//	@Summary		Consume an invite code
//	@Description	Atomically marks the invite used. Only one of any number of concurrent calls succeeds.
//	@Description	Consuming on behalf of another user requires admin or super_admin.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupsdk.ConsumeInviteRequest	true	"Invite code and optional user id"
//	@Success		200		{object}	signupsdk.ConsumeInviteResponse
//	@Failure		400		{object}	signupsdk.ErrorResponse	"VALIDATION_ERROR"
//	@Failure		403		{object}	signupsdk.ErrorResponse	"UNAUTHORIZED"
//	@Failure		409		{object}	signupsdk.ErrorResponse	"CONFLICT"
//	@Security		BearerAuth
//	@Router			/v1/invite-codes/consume [post].
func (h *InvitesHandler) HandleConsume(w http.ResponseWriter, r *http.Request) {
	var req signupsdk.ConsumeInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	requester := httpx.UserIDFromContext(r.Context())
	userID := req.UserID
	if userID == "" {
		userID = requester
	}

	res, err := h.Invites.Consume(r.Context(), req.Code, userID, requester)
	if err != nil {
		writeServiceError(w, r, "consume invite", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, signupsdk.ConsumeInviteResponse{
		Invite:       toSDKInvite(res.Invite),
		AccountType:  string(res.AccountType),
		CreatorHubID: res.CreatorHubID,
	})
}

func toSDKInvite(inv domain.InviteCode) signupsdk.Invite {
	return signupsdk.Invite{
		ID:           inv.ID,
		Code:         inv.Code,
		InvitedEmail: inv.InvitedEmail,
		AccountType:  string(inv.AccountType),
		HubID:        inv.HubID,
		CreatedBy:    inv.CreatedBy,
		ExpiresAt:    inv.ExpiresAt,
		UsedAt:       inv.UsedAt,
		UsedBy:       inv.UsedBy,
		CreatedAt:    inv.CreatedAt,
	}
}

// queryInt parses an optional non-negative integer; "" is 0.
func queryInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
