package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/metrics"
	"github.com/aussiebroadwan/hubsignup/internal/signup/notify"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store/drivers/sqlite"
	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	hubH = "6f1c2a4e-3b7d-4c1e-9a52-0d8e7f3b1a10"
	hubK = "0b6e8d2c-7a41-4f3e-8c9d-2e5f1a7b3c64"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
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

func (d *captureDispatcher) messages() []notify.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Message(nil), d.msgs...)
}

// recordingProvider counts calls into the wrapped provider and injects
// faults.
type recordingProvider struct {
	identity.Provider

	mu            sync.Mutex
	creates       int
	deletes       int
	exchanges     int
	verifications int
	emailConfirm  map[string]bool

	createErr   error
	deleteErr   error
	exchangeErr error
	afterCreate func(userID string)
}

func (p *recordingProvider) Create(ctx context.Context, req identity.CreateRequest) (string, error) {
	p.mu.Lock()
	p.creates++
	p.emailConfirm[req.Email] = req.EmailConfirm
	createErr := p.createErr
	p.mu.Unlock()

	if createErr != nil {
		return "", createErr
	}
	id, err := p.Provider.Create(ctx, req)
	if err == nil && p.afterCreate != nil {
		p.afterCreate(id)
	}
	return id, err
}

func (p *recordingProvider) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	p.deletes++
	deleteErr := p.deleteErr
	p.mu.Unlock()

	if deleteErr != nil {
		return deleteErr
	}
	return p.Provider.Delete(ctx, id)
}

func (p *recordingProvider) TokenExchange(ctx context.Context, email, password string) (domain.Session, error) {
	p.mu.Lock()
	p.exchanges++
	exchangeErr := p.exchangeErr
	p.mu.Unlock()

	if exchangeErr != nil {
		return domain.Session{}, exchangeErr
	}
	return p.Provider.TokenExchange(ctx, email, password)
}

func (p *recordingProvider) SendVerification(ctx context.Context, email string) error {
	p.mu.Lock()
	p.verifications++
	p.mu.Unlock()
	return p.Provider.SendVerification(ctx, email)
}

func (p *recordingProvider) setDeleteErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteErr = err
}

func (p *recordingProvider) counts() (creates, deletes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creates, p.deletes
}

type env struct {
	store      store.Store
	provider   *recordingProvider
	dispatcher *captureDispatcher
	notifier   *notify.FireAndForget
	clock      *testClock

	hubs    *HubContextResolver
	invites *InviteCodeRegistry
	roles   *RoleAuthority
	subs    *SubscriptionAutoAssigner
	signup  *SignupOrchestrator
}

func newEnv(t *testing.T) *env {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	keys, err := jwtx.NewEphemeralSessionKeys("hubsignup-test", []string{identity.SessionAudience})
	require.NoError(t, err)

	e := &env{
		store:      s,
		dispatcher: &captureDispatcher{},
		clock:      &testClock{t: time.Now().UTC()},
	}
	e.notifier = notify.NewFireAndForget(e.dispatcher, time.Second)
	t.Cleanup(e.notifier.Wait)

	local, err := identity.NewLocal(identity.LocalConfig{
		Store:    s,
		Keys:     keys,
		Issuer:   "hubsignup-test",
		Notifier: e.notifier,
		AppURL:   "https://app.example.com",
	})
	require.NoError(t, err)
	e.provider = &recordingProvider{Provider: local, emailConfirm: map[string]bool{}}

	m := metrics.New(prometheus.NewRegistry())
	e.hubs = &HubContextResolver{Store: s}
	e.invites = &InviteCodeRegistry{
		Store:    s,
		Hubs:     e.hubs,
		Notifier: e.notifier,
		Metrics:  m,
		AppURL:   "https://app.example.com",
		now:      e.clock.Now,
	}
	e.roles = &RoleAuthority{Store: s, Metrics: m}
	e.subs = &SubscriptionAutoAssigner{Store: s, Metrics: m}
	e.signup = &SignupOrchestrator{
		Store:         s,
		Identity:      e.provider,
		Invites:       e.invites,
		Hubs:          e.hubs,
		Roles:         e.roles,
		Subscriptions: e.subs,
		Metrics:       m,
	}
	return e
}

func (e *env) grant(t *testing.T, userID string, g domain.Grant) {
	t.Helper()
	_, err := e.store.Roles().AddRole(context.Background(), userID, g)
	require.NoError(t, err)
}

func (e *env) issue(t *testing.T, req IssueRequest) domain.InviteCode {
	t.Helper()
	inv, err := e.invites.Issue(context.Background(), req)
	require.NoError(t, err)
	return inv
}

func (e *env) premiumPlan(t *testing.T) domain.Plan {
	t.Helper()
	p := domain.Plan{ID: "plan-premium", Name: "Premium", Active: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, e.store.Plans().CreatePlan(context.Background(), p))
	return p
}

// mustGrant unwraps a grant constructor, as in mustGrant(t)(domain.HubAdmin(id)).
func mustGrant(t *testing.T) func(domain.Grant, error) domain.Grant {
	return func(g domain.Grant, err error) domain.Grant {
		t.Helper()
		require.NoError(t, err)
		return g
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// faultyStore fails every subscription read with err.
type faultyStore struct {
	store.Store
	err error
}

func (f faultyStore) Subscriptions() store.Subscriptions {
	return faultySubscriptions{Subscriptions: f.Store.Subscriptions(), err: f.err}
}

type faultySubscriptions struct {
	store.Subscriptions
	err error
}

func (f faultySubscriptions) GetActiveSubscription(context.Context, string, time.Time) (domain.Subscription, error) {
	return domain.Subscription{}, f.err
}
