package signup_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/app"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store/drivers/postgres"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/signupsdk"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the signup service in-process against a real
 * Postgres started with testcontainers, and drive it through signupsdk.
 */

const (
	bootstrapToken = "test-bootstrap-token-12345"
	adminEmail     = "ops@example.com"
	adminPassword  = "Admin123!secret"
	userPassword   = "correct horse battery"
	hubA           = "0b6d8c1e-7f52-4a3b-9e1d-2c4f6a8b0d13"
	hubB           = "9a7e5c3b-1d2f-4e6a-8b0c-3e5f7a9b1c24"
)

// TestMain relaxes the rate limits; the tests fire many requests from a
// single address.
func TestMain(m *testing.M) {
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed

	dir, err := os.MkdirTemp("", "signup-e2e")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	pepperFile = filepath.Join(dir, "pepper")

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

var pepperFile string

// setupSignupService starts Postgres and the service and returns an SDK
// client pointed at it.
func setupSignupService(t *testing.T) (*signupsdk.SDKClient, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("signup"),
		tcpostgres.WithUsername("signup"),
		tcpostgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	st, err := postgres.NewStore(ctx, connString)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	cfg := app.Config{
		Env:                 "test",
		Port:                8080,
		ShutdownGracePeriod: 5 * time.Second,
		SagaStaleAfter:      15 * time.Minute,
		StoreDriver:         "postgres",
		DatabaseURL:         connString,
		IdentityProvider:    "local",
		Issuer:              "hubsignup-e2e",
		PepperFile:          pepperFile,
		BootstrapToken:      bootstrapToken,
		InviteTTL:           14 * 24 * time.Hour,
		AppURL:              "https://app.example.com",
		Notifier:            "log",
	}
	logger := slogx.New(slogx.Config{Service: "signup-e2e", Env: "test", Level: "warn", Format: "text"})

	application, err := app.NewWithStore(cfg, st, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())

	cleanup := func() {
		srv.Close()
		_ = st.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return signupsdk.NewSDKClient(srv.URL), cleanup
}

// bootstrapService creates the super_admin and the premium plan, and returns
// a super_admin session.
func bootstrapService(t *testing.T, client *signupsdk.SDKClient) *signupsdk.Session {
	t.Helper()

	res, err := client.Bootstrap(t.Context(), bootstrapToken, signupsdk.BootstrapRequest{
		Email:    adminEmail,
		Password: adminPassword,
		FullName: "Operations",
		Plans:    []string{"Premium"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.UserID)
	require.Len(t, res.PlanIDs, 1)

	session, err := client.AuthenticateWithPassword(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	return session
}

// signupWithInvite issues an invite from issuer and signs up email with it.
func signupWithInvite(t *testing.T, client *signupsdk.SDKClient, issuer *signupsdk.Session, req signupsdk.InviteRequest, email, name string) *signupsdk.SignupResponse {
	t.Helper()

	invite, err := issuer.IssueInvite(t.Context(), req)
	require.NoError(t, err)

	res, err := client.Signup(t.Context(), signupsdk.SignupRequest{
		Email:      email,
		Password:   userPassword,
		FullName:   name,
		InviteCode: invite.Code,
	})
	require.NoError(t, err)
	return res
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *signupsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *signupsdk.APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}
