package signupsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Session performs bearer-authenticated calls.
type Session struct {
	client      *SDKClient
	accessToken string
}

// AccessToken returns the bearer token used by the session.
func (s *Session) AccessToken() string { return s.accessToken }

func (s *Session) call(ctx context.Context, method, path string, in, out any, expectedStatus int) error {
	return s.client.call(ctx, method, path, s.accessToken, nil, in, out, expectedStatus)
}

// Me returns the caller's profile and roles.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := s.call(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// IssueInvite creates an invite code.
func (s *Session) IssueInvite(ctx context.Context, req InviteRequest) (*Invite, error) {
	var out Invite
	if err := s.call(ctx, http.MethodPost, "/v1/invite-codes", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvites lists the invites the caller may manage. An empty hubID lists
// hub-less invites for super_admin callers and every managed hub otherwise.
func (s *Session) ListInvites(ctx context.Context, hubID string, limit, offset int) (*InviteList, error) {
	q := url.Values{}
	if hubID != "" {
		q.Set("hub_id", hubID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/v1/invite-codes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out InviteList
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInvite removes an invite by id.
func (s *Session) DeleteInvite(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/invite-codes/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// SendInvite re-sends the invite notification.
func (s *Session) SendInvite(ctx context.Context, req SendInviteRequest) error {
	return s.call(ctx, http.MethodPost, "/v1/invite-codes/send", req, nil, http.StatusAccepted)
}

// ConsumeInvite claims an invite for req.UserID, or the caller when empty.
func (s *Session) ConsumeInvite(ctx context.Context, req ConsumeInviteRequest) (*ConsumeInviteResponse, error) {
	var out ConsumeInviteResponse
	if err := s.call(ctx, http.MethodPost, "/v1/invite-codes/consume", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignRole grants a role.
func (s *Session) AssignRole(ctx context.Context, req RoleRequest) (bool, error) {
	var out RoleResponse
	if err := s.call(ctx, http.MethodPost, "/v1/roles", req, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Changed, nil
}

// RemoveRole revokes a role.
func (s *Session) RemoveRole(ctx context.Context, req RoleRequest) (bool, error) {
	var out RoleResponse
	if err := s.call(ctx, http.MethodDelete, "/v1/roles", req, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Changed, nil
}
