package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	signuphttp "github.com/aussiebroadwan/hubsignup/internal/signup/http"
	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/metrics"
	"github.com/aussiebroadwan/hubsignup/internal/signup/notify"
	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store/drivers/sqlite"
	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/jwtx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	bootstrapToken = "test-bootstrap-token"
	adminEmail     = "ops@example.com"
	adminPassword  = "Admin123!secret"
	hubID          = "6f1c2a4e-3b7d-4c1e-9a52-0d8e7f3b1a10"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type captureDispatcher struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (d *captureDispatcher) Dispatch(_ context.Context, msg notify.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, msg)
	return nil
}

func (d *captureDispatcher) last(kind notify.Kind) (notify.Message, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.msgs) - 1; i >= 0; i-- {
		if d.msgs[i].Kind == kind {
			return d.msgs[i], true
		}
	}
	return notify.Message{}, false
}

type testServer struct {
	client     *signupsdk.SDKClient
	url        string
	store      store.Store
	notifier   *notify.FireAndForget
	dispatcher *captureDispatcher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	keys, err := jwtx.NewEphemeralSessionKeys("hubsignup-test", []string{identity.SessionAudience})
	require.NoError(t, err)

	d := &captureDispatcher{}
	notifier := notify.NewFireAndForget(d, time.Second)

	local, err := identity.NewLocal(identity.LocalConfig{
		Store:    s,
		Keys:     keys,
		Issuer:   "hubsignup-test",
		Notifier: notifier,
		AppURL:   "https://app.example.com",
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hubs := &service.HubContextResolver{Store: s}
	invites := &service.InviteCodeRegistry{Store: s, Hubs: hubs, Notifier: notifier, Metrics: m, AppURL: "https://app.example.com"}
	roles := &service.RoleAuthority{Store: s, Metrics: m}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := signuphttp.NewRouter(local.Verifier(), "test", s, logger)
	router.Keys = keys.KeySet
	router.Gatherer = reg
	router.Invites = invites
	router.Roles = roles
	router.Signup = &service.SignupOrchestrator{
		Store:         s,
		Identity:      local,
		Invites:       invites,
		Hubs:          hubs,
		Roles:         roles,
		Subscriptions: &service.SubscriptionAutoAssigner{Store: s, Metrics: m},
		Metrics:       m,
	}
	router.Bootstrap = &service.Bootstrap{Store: s, Identity: local, Token: bootstrapToken}
	router.Passwords = local
	router.EmailConfirm = local
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(notifier.Wait)

	return &testServer{
		client:     signupsdk.NewSDKClient(srv.URL),
		url:        srv.URL,
		store:      s,
		notifier:   notifier,
		dispatcher: d,
	}
}

// admin bootstraps the server and returns a super_admin session.
func (ts *testServer) admin(t *testing.T) *signupsdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := ts.client.Bootstrap(ctx, bootstrapToken, signupsdk.BootstrapRequest{
		Email:    adminEmail,
		Password: adminPassword,
		FullName: "Ops",
		Plans:    []string{"Premium"},
	})
	require.NoError(t, err)

	session, err := ts.client.AuthenticateWithPassword(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	return session
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *signupsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestSignupFromSuperAdminInvite(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	admin := ts.admin(t)

	invite, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{
		AccountType:  "business",
		InvitedEmail: "founder@example.com",
		HubID:        hubID,
	})
	require.NoError(t, err)
	require.Equal(t, hubID, invite.HubID)
	require.Len(t, invite.Code, 12)

	v, err := ts.client.ValidateInvite(ctx, strings.ToLower(invite.Code))
	require.NoError(t, err)
	require.True(t, v.Valid)
	require.Equal(t, "business", v.Invite.AccountType)

	res, err := ts.client.Signup(ctx, signupsdk.SignupRequest{
		Email:      "Founder@example.com",
		Password:   "correct horse",
		FullName:   "Ada Founder",
		InviteCode: invite.Code,
	})
	require.NoError(t, err)
	require.True(t, res.Created)
	require.True(t, res.TokenExchanged)
	require.Equal(t, "Welcome Ada Founder", res.Message)
	require.True(t, res.Subscription.Assigned)
	require.Equal(t, "premium", res.Subscription.Plan)

	me, err := ts.client.NewSession(res.Session.AccessToken).Me(ctx)
	require.NoError(t, err)
	require.Equal(t, res.UserID, me.Profile.ID)
	require.True(t, me.Profile.EmailConfirmed)
	require.Equal(t, hubID, me.Profile.HubID)
	require.Contains(t, me.Roles, signupsdk.Grant{Role: "entrepreneur", HubID: hubID})

	// The code is spent.
	v, err = ts.client.ValidateInvite(ctx, invite.Code)
	require.NoError(t, err)
	require.False(t, v.Valid)
	require.Nil(t, v.Invite)

	_, err = ts.client.Signup(ctx, signupsdk.SignupRequest{
		Email:      "second@example.com",
		Password:   "correct horse",
		InviteCode: invite.Code,
	})
	requireAPIError(t, err, http.StatusBadRequest, signupsdk.CodeInvalidInvite)
}

func TestSignupFromHubManagerInviteRequiresConfirmation(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	admin := ts.admin(t)

	// A hub manager with a known password.
	managerInvite, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business", HubID: hubID})
	require.NoError(t, err)
	manager, err := ts.client.Signup(ctx, signupsdk.SignupRequest{
		Email: "manager@example.com", Password: "manager-pass", InviteCode: managerInvite.Code,
	})
	require.NoError(t, err)
	changed, err := admin.AssignRole(ctx, signupsdk.RoleRequest{UserID: manager.UserID, Role: "hub_manager", HubID: hubID})
	require.NoError(t, err)
	require.True(t, changed)
	managerSession := ts.client.NewSession(manager.Session.AccessToken)

	// hub_manager rows carry no implicit hub, so the invite is hub-less.
	invite, err := managerSession.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business", HubID: hubID})
	require.NoError(t, err)
	require.Empty(t, invite.HubID)

	res, err := ts.client.Signup(ctx, signupsdk.SignupRequest{
		Email: "member@example.com", Password: "member-pass", InviteCode: invite.Code,
	})
	require.NoError(t, err)
	require.False(t, res.TokenExchanged)
	require.Equal(t, service.MessageSignInManually, res.Message)
	require.False(t, res.Subscription.Assigned)

	_, err = ts.client.Token(ctx, signupsdk.TokenRequest{Email: "member@example.com", Password: "member-pass"})
	requireAPIError(t, err, http.StatusForbidden, signupsdk.CodeUnauthorized)

	ts.notifier.Wait()
	msg, ok := ts.dispatcher.last(notify.KindSignupConfirmation)
	require.True(t, ok)
	require.Equal(t, "member@example.com", msg.To)
	link, err := url.Parse(msg.Vars["link"])
	require.NoError(t, err)

	confirmed, err := ts.client.ConfirmEmail(ctx, link.Query().Get("token"))
	require.NoError(t, err)
	require.Equal(t, res.UserID, confirmed.UserID)

	_, err = ts.client.Token(ctx, signupsdk.TokenRequest{Email: "member@example.com", Password: "member-pass"})
	require.NoError(t, err)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	admin := ts.admin(t)

	invite, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business", HubID: hubID})
	require.NoError(t, err)
	member, err := ts.client.Signup(ctx, signupsdk.SignupRequest{
		Email: "member@example.com", Password: "member-pass", InviteCode: invite.Code,
	})
	require.NoError(t, err)
	memberSession := ts.client.NewSession(member.Session.AccessToken)

	t.Run("consumed invite conflicts", func(t *testing.T) {
		_, err := admin.ConsumeInvite(ctx, signupsdk.ConsumeInviteRequest{Code: invite.Code})
		requireAPIError(t, err, http.StatusConflict, signupsdk.CodeConflict)
	})

	t.Run("entrepreneur cannot issue", func(t *testing.T) {
		_, err := memberSession.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business"})
		requireAPIError(t, err, http.StatusForbidden, signupsdk.CodeUnauthorized)
	})

	t.Run("entrepreneur cannot grant admin", func(t *testing.T) {
		_, err := memberSession.AssignRole(ctx, signupsdk.RoleRequest{UserID: member.UserID, Role: "admin", HubID: hubID})
		requireAPIError(t, err, http.StatusForbidden, signupsdk.CodeUnauthorized)
	})

	t.Run("hub scoped role without hub", func(t *testing.T) {
		_, err := admin.AssignRole(ctx, signupsdk.RoleRequest{UserID: member.UserID, Role: "hub_manager"})
		requireAPIError(t, err, http.StatusBadRequest, signupsdk.CodeValidation)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := admin.AssignRole(ctx, signupsdk.RoleRequest{UserID: member.UserID, Role: "owner"})
		requireAPIError(t, err, http.StatusBadRequest, signupsdk.CodeValidation)
	})

	t.Run("missing invite", func(t *testing.T) {
		err := admin.DeleteInvite(ctx, "does-not-exist")
		requireAPIError(t, err, http.StatusNotFound, signupsdk.CodeNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		again, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business"})
		require.NoError(t, err)
		_, err = ts.client.Signup(ctx, signupsdk.SignupRequest{
			Email: "member@example.com", Password: "member-pass", InviteCode: again.Code,
		})
		requireAPIError(t, err, http.StatusConflict, signupsdk.CodeAuthCreate)

		// The invite survives the failed attempt.
		v, err := ts.client.ValidateInvite(ctx, again.Code)
		require.NoError(t, err)
		require.True(t, v.Valid)
	})

	t.Run("bad signup input", func(t *testing.T) {
		_, err := ts.client.Signup(ctx, signupsdk.SignupRequest{Email: "nope", Password: "x", InviteCode: "ABC"})
		requireAPIError(t, err, http.StatusBadRequest, signupsdk.CodeValidation)
	})
}

func TestBearerRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.url+"/v1/invite-codes", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")

	_, err = ts.client.NewSession("garbage").Me(context.Background())
	requireAPIError(t, err, http.StatusUnauthorized, signupsdk.CodeUnauthenticated)
}

func TestValidateDoesNotDisclose(t *testing.T) {
	ts := newTestServer(t)

	v, err := ts.client.ValidateInvite(context.Background(), "NEVERISSUED2")
	require.NoError(t, err)
	require.False(t, v.Valid)

	resp, err := http.Get(ts.url + "/v1/invite-codes/validate?code=NEVERISSUED2")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"valid":false}`, string(body))
}

// decodeBody reads a JSON object response into a generic map so tests can
// assert on the exact keys clients see.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestResponseWireKeys(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	admin := ts.admin(t)

	invite, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business", HubID: hubID})
	require.NoError(t, err)

	resp, err := http.Get(ts.url + "/v1/invite-codes/validate?code=" + invite.Code)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validate := decodeBody(t, resp)
	require.Equal(t, true, validate["valid"])
	preview, ok := validate["invite"].(map[string]any)
	require.True(t, ok, "invite object missing: %v", validate)
	require.Equal(t, invite.Code, preview["code"])
	require.Equal(t, "business", preview["account_type"])
	require.Equal(t, hubID, preview["hub_id"])
	require.Contains(t, preview, "expires_at")

	body := `{"email":"wire@example.com","password":"correct horse","full_name":"Wire Keys","invite_code":"` + invite.Code + `"}`
	resp, err = http.Post(ts.url+"/v1/signup", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	signup := decodeBody(t, resp)
	require.Equal(t, true, signup["created"])
	require.Equal(t, true, signup["token_exchanged"])
	require.NotEmpty(t, signup["user_id"])
	require.Equal(t, "Welcome Wire Keys", signup["message"])
	require.NotContains(t, signup, "session_issued")

	session, ok := signup["session"].(map[string]any)
	require.True(t, ok, "session object missing: %v", signup)
	require.NotEmpty(t, session["access_token"])
}

func TestListInvitesScopedToHub(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	admin := ts.admin(t)

	_, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business", HubID: hubID})
	require.NoError(t, err)
	global, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "organization"})
	require.NoError(t, err)

	list, err := admin.ListInvites(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, list.Invites, 1)
	require.Equal(t, global.ID, list.Invites[0].ID)

	list, err = admin.ListInvites(ctx, hubID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list.Invites, 1)
	require.Equal(t, hubID, list.Invites[0].HubID)

	require.NoError(t, admin.DeleteInvite(ctx, global.ID))
	list, err = admin.ListInvites(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Empty(t, list.Invites)
}

func TestSendInvite(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	admin := ts.admin(t)

	_, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business", InvitedEmail: "a@example.com"})
	require.NoError(t, err)
	require.NoError(t, admin.SendInvite(ctx, signupsdk.SendInviteRequest{Email: "a@example.com"}))

	ts.notifier.Wait()
	msg, ok := ts.dispatcher.last(notify.KindInvite)
	require.True(t, ok)
	require.Equal(t, "a@example.com", msg.To)

	noEmail, err := admin.IssueInvite(ctx, signupsdk.InviteRequest{AccountType: "business"})
	require.NoError(t, err)
	err = admin.SendInvite(ctx, signupsdk.SendInviteRequest{Code: noEmail.Code})
	requireAPIError(t, err, http.StatusBadRequest, signupsdk.CodeValidation)
}

func TestBootstrapEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.client.Bootstrap(ctx, "wrong", signupsdk.BootstrapRequest{Email: adminEmail})
	requireAPIError(t, err, http.StatusUnauthorized, signupsdk.CodeUnauthenticated)

	res, err := ts.client.Bootstrap(ctx, bootstrapToken, signupsdk.BootstrapRequest{Email: adminEmail, Plans: []string{"Premium"}})
	require.NoError(t, err)
	require.NotEmpty(t, res.GeneratedPassword)
	require.Len(t, res.PlanIDs, 1)

	roles, err := ts.store.Roles().ListRolesByUser(ctx, res.UserID)
	require.NoError(t, err)
	require.True(t, roles.Contains(domain.SuperAdmin()))

	_, err = ts.client.Bootstrap(ctx, bootstrapToken, signupsdk.BootstrapRequest{Email: "other@example.com"})
	requireAPIError(t, err, http.StatusConflict, signupsdk.CodeConflict)
}

func TestSystemEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	live, err := ts.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := ts.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)

	jwks, err := ts.client.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)

	// Generate at least one sample.
	_, _ = ts.client.ValidateInvite(ctx, "NEVERISSUED2")
	_, _ = ts.client.Signup(ctx, signupsdk.SignupRequest{Email: "x@example.com", Password: "password1", InviteCode: "NEVERISSUED2"})

	resp, err := http.Get(ts.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `hubsignup_signups_total{outcome="invalid_invite"} 1`)
}
