package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/domain"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

type GoTrueConfig struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client

	// Store and Provisioner, when both set, run default provisioning
	// in-process after the remote identity is created.
	Store       store.Store
	Provisioner Provisioner
}

// GoTrue drives a hosted GoTrue-compatible auth server through its admin
// API using the service key.
type GoTrue struct {
	baseURL     string
	serviceKey  string
	client      *http.Client
	store       store.Store
	provisioner Provisioner
}

func NewGoTrue(cfg GoTrueConfig) (*GoTrue, error) {
	if cfg.BaseURL == "" || cfg.ServiceKey == "" {
		return nil, errors.New("identity: gotrue provider needs a base url and service key")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoTrue{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey:  cfg.ServiceKey,
		client:      cfg.HTTPClient,
		store:       cfg.Store,
		provisioner: cfg.Provisioner,
	}, nil
}

type gotrueUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int        `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	RefreshToken string     `json:"refresh_token"`
	User         gotrueUser `json:"user"`
}

// gotrueError covers the error shapes GoTrue has used across versions.
type gotrueError struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// APIError is returned for unexpected GoTrue responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gotrue: status %d: %s", e.StatusCode, e.Message)
}

func (g *GoTrue) Create(ctx context.Context, req CreateRequest) (string, error) {
	body := map[string]any{
		"email":         strings.TrimSpace(req.Email),
		"password":      req.Password,
		"email_confirm": req.EmailConfirm,
		"user_metadata": req.Metadata.Map(),
	}

	var user gotrueUser
	status, err := g.do(ctx, http.MethodPost, "/admin/users", body, &user)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && isEmailTaken(apiErr) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", &APIError{StatusCode: status, Message: "unexpected status"}
	}
	if user.ID == "" {
		return "", &APIError{StatusCode: status, Message: "response without user id"}
	}

	if g.store != nil && g.provisioner != nil {
		id := domain.Identity{
			ID:        user.ID,
			Email:     strings.TrimSpace(req.Email),
			Metadata:  req.Metadata,
			CreatedAt: time.Now().UTC(),
		}
		if req.EmailConfirm {
			now := id.CreatedAt
			id.EmailConfirmedAt = &now
		}
		err := g.store.WithTx(ctx, func(tx store.Tx) error {
			return g.provisioner.Provision(ctx, tx, id)
		})
		if err != nil {
			// Do not leave a remote identity without its profile.
			if delErr := g.deleteRemote(context.WithoutCancel(ctx), user.ID); delErr != nil {
				slogx.FromContext(ctx).Error("failed to delete gotrue user after provisioning failure",
					slog.String("user_id", user.ID),
					slog.Any("error", delErr),
				)
			}
			return "", fmt.Errorf("provision: %w", err)
		}
	}
	return user.ID, nil
}

func (g *GoTrue) Delete(ctx context.Context, id string) error {
	if g.store != nil && g.provisioner != nil {
		err := g.store.WithTx(ctx, func(tx store.Tx) error {
			return g.provisioner.Deprovision(ctx, tx, id)
		})
		if err != nil {
			return err
		}
	}
	return g.deleteRemote(ctx, id)
}

func (g *GoTrue) deleteRemote(ctx context.Context, id string) error {
	_, err := g.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil)
	if apiErr, ok := asAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}

func (g *GoTrue) TokenExchange(ctx context.Context, email, password string) (domain.Session, error) {
	var s gotrueSession
	_, err := g.do(ctx, http.MethodPost, "/token?grant_type=password", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, &s)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok {
			switch {
			case strings.Contains(strings.ToLower(apiErr.Message), "not confirmed"):
				return domain.Session{}, ErrEmailNotConfirmed
			case apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized:
				return domain.Session{}, ErrInvalidCredentials
			}
		}
		return domain.Session{}, err
	}

	session := domain.Session{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		RefreshToken: s.RefreshToken,
		UserID:       s.User.ID,
	}
	if s.ExpiresAt > 0 {
		session.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	} else if s.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().UTC().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return session, nil
}

func (g *GoTrue) SendVerification(ctx context.Context, email string) error {
	_, err := g.do(ctx, http.MethodPost, "/resend", map[string]string{
		"type":  "signup",
		"email": strings.TrimSpace(email),
	}, nil)
	return err
}

// do sends a JSON request with service credentials and decodes a 2xx body
// into out. Non-2xx responses become *APIError.
func (g *GoTrue) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+g.serviceKey)
	req.Header.Set("apikey", g.serviceKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gotrue %s %s: %w", method, strings.SplitN(path, "?", 2)[0], err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e gotrueError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, &e)
		msg := e.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if e.ErrorCode != "" {
			msg = e.ErrorCode + ": " + msg
		}
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("gotrue decode: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func isEmailTaken(e *APIError) bool {
	msg := strings.ToLower(e.Message)
	return e.StatusCode == http.StatusUnprocessableEntity &&
		(strings.Contains(msg, "already") || strings.Contains(msg, "email_exists"))
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
