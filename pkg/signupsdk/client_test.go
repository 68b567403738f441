package signupsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupDecodesCreated(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/signup", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SignupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "ABCD2345EFGH", req.InviteCode)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(SignupResponse{UserID: "u1", Message: "Account created; sign in to continue"})
	}))
	t.Cleanup(srv.Close)

	res, err := NewSDKClient(srv.URL+"/").Signup(context.Background(), SignupRequest{
		Email: "a@x.com", Password: "password1", InviteCode: "ABCD2345EFGH",
	})
	require.NoError(t, err)
	require.Equal(t, "u1", res.UserID)
	require.False(t, res.TokenExchanged)
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INVITE","message":"Invalid or expired invite code"}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewSDKClient(srv.URL).ValidateInvite(context.Background(), "nope")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, CodeInvalidInvite, apiErr.Code)
}

func TestNonEnvelopeErrorFallsBackToStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewSDKClient(srv.URL).GetLiveness(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, CodeInternal, apiErr.Code)
	require.Contains(t, apiErr.Message, "502")
}

func TestSessionSendsBearer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.Method + " " + r.URL.Path {
		case "DELETE /v1/invite-codes/inv-1":
			w.WriteHeader(http.StatusNoContent)
		case "GET /v1/invite-codes":
			require.Equal(t, "hub-1", r.URL.Query().Get("hub_id"))
			require.Equal(t, "10", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode(InviteList{Invites: []Invite{{ID: "inv-2"}}, Limit: 10})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)

	s := NewSDKClient(srv.URL).NewSession("tok")
	require.NoError(t, s.DeleteInvite(context.Background(), "inv-1"))

	list, err := s.ListInvites(context.Background(), "hub-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Invites, 1)
	require.Equal(t, "inv-2", list.Invites[0].ID)
}
