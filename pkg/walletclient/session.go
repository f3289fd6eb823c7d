// Package walletclient is a Go client for the wallet API. A Session carries
// the caller's access token and refresh cookie; concurrent requests that hit
// an expired token share a single refresh and are replayed once.
package walletclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/pkg/clients"
)

const (
	refreshPath = "/api/auth/refresh"
	loginPath   = "/api/auth/login"
	logoutPath  = "/api/auth/logout"
	mePath      = "/api/me"

	defaultRetries = 2
	retryBackoff   = 200 * time.Millisecond
)

// ErrNotAuthenticated is returned by Hydrate when there is no session to restore.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a non-2xx reply.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("wallet api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("wallet api: %d %s: %s", e.Status, e.Code, e.Message)
}

type Option func(*Session)

// WithHTTPClient replaces the transport. The client is responsible for
// keeping the refresh cookie.
func WithHTTPClient(client clients.HTTPClientI) Option {
	return func(s *Session) { s.http = client }
}

// WithRetries sets how many times a 503 reply is retried before it is returned.
func WithRetries(n int) Option {
	return func(s *Session) { s.retries = n }
}

type Session struct {
	baseURL string
	http    clients.HTTPClientI
	retries int
	backoff time.Duration

	mu       sync.RWMutex
	token    string
	user     *dto.WalletUserDTO
	hydrated bool

	group singleflight.Group
}

func New(baseURL string, opts ...Option) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	s := &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    clients.NewHTTPClient(jar),
		retries: defaultRetries,
		backoff: retryBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User is the profile loaded by Hydrate, or nil.
func (s *Session) User() *dto.WalletUserDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) Login(ctx context.Context, email, password string) (*dto.UserDTO, error) {
	var resp dto.AuthResponseDTO
	if err := s.send(ctx, http.MethodPost, loginPath, dto.LoginRequestDTO{Email: email, Password: password}, &resp, ""); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.token = resp.AccessToken
	s.user = nil
	s.hydrated = false
	s.mu.Unlock()
	return &resp.User, nil
}

// Refresh exchanges the refresh cookie for a new access token. Concurrent
// callers share one request.
func (s *Session) Refresh(ctx context.Context) error {
	return s.refresh(ctx, s.Token())
}

// refresh is a no-op when the token is no longer stale, so a 401 that lands
// after another caller refreshed does not rotate the session again.
func (s *Session) refresh(ctx context.Context, stale string) error {
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		if s.Token() != stale {
			return nil, nil
		}
		var resp dto.AuthResponseDTO
		if err := s.send(ctx, http.MethodPost, refreshPath, nil, &resp, ""); err != nil {
			return nil, err
		}
		s.setToken(resp.AccessToken)
		return nil, nil
	})
	return err
}

// Hydrate restores the session once: it refreshes the access token when
// there is none and loads the profile. Later calls return the loaded profile.
func (s *Session) Hydrate(ctx context.Context) (*dto.WalletUserDTO, error) {
	s.mu.RLock()
	if s.hydrated {
		user := s.user
		s.mu.RUnlock()
		return user, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("hydrate", func() (any, error) {
		s.mu.RLock()
		done, user := s.hydrated, s.user
		s.mu.RUnlock()
		if done {
			return user, nil
		}
		if s.Token() == "" {
			if err := s.Refresh(ctx); err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
					return nil, ErrNotAuthenticated
				}
				return nil, err
			}
		}
		var me dto.MeResponseDTO
		if err := s.Do(ctx, http.MethodGet, mePath, nil, &me); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.user = &me.User
		s.hydrated = true
		s.mu.Unlock()
		return &me.User, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.WalletUserDTO), nil
}

// Logout ends the server session and always clears local state.
func (s *Session) Logout(ctx context.Context) error {
	err := s.send(ctx, http.MethodPost, logoutPath, nil, nil, s.Token())
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.hydrated = false
	s.mu.Unlock()
	return err
}

// Do sends an authenticated request. A 401 triggers one refresh and one
// replay; when the refresh fails the original 401 is returned.
func (s *Session) Do(ctx context.Context, method, path string, in, out any) error {
	token := s.Token()
	err := s.send(ctx, method, path, in, out, token)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || path == refreshPath || path == loginPath {
		return err
	}
	if rerr := s.refresh(ctx, token); rerr != nil {
		zap.L().Debug("refresh failed", zap.Error(rerr))
		return err
	}
	return s.send(ctx, method, path, in, out, s.Token())
}

// send performs one logical request, retrying 503 replies.
func (s *Session) send(ctx context.Context, method, path string, in, out any, token string) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	for attempt := 0; ; attempt++ {
		err := s.roundTrip(ctx, method, path, payload, out, token)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable || attempt >= s.retries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt+1)):
		}
	}
}

func (s *Session) roundTrip(ctx context.Context, method, path string, payload []byte, out any, token string) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	data, err := clients.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var reply struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &reply) == nil && reply.Message != "" {
			apiErr.Code, apiErr.Message = reply.Code, reply.Message
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
