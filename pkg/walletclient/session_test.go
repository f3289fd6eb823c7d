package walletclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type fakeAPI struct {
	mu           sync.Mutex
	validToken   string
	refreshOK    bool
	refreshCalls atomic.Int64
	meCalls      atomic.Int64
	unavailable  atomic.Int64
	refreshDelay time.Duration
}

func (f *fakeAPI) token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validToken
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+f.token()
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "r1", Path: "/api/auth", HttpOnly: true})
		writeJSON(w, http.StatusOK, dto.AuthResponseDTO{AccessToken: f.token(), User: dto.UserDTO{ID: 1, Name: "Abel"}})
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		time.Sleep(f.refreshDelay)
		if _, err := r.Cookie("refresh_token"); err != nil || !f.refreshOK {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "INVALID_TOKEN", "message": "invalid or expired token"})
			return
		}
		f.mu.Lock()
		f.validToken = "t2"
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, dto.AuthResponseDTO{AccessToken: "t2"})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "logged out"})
	})
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		f.meCalls.Add(1)
		if !f.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "UNAUTHORIZED", "message": "authentication required"})
			return
		}
		writeJSON(w, http.StatusOK, dto.MeResponseDTO{User: dto.WalletUserDTO{UserDTO: dto.UserDTO{ID: 1, Name: "Abel"}, BalanceCents: 5000}})
	})
	mux.HandleFunc("/api/me/claim-spin", func(w http.ResponseWriter, r *http.Request) {
		if f.unavailable.Load() > 0 {
			f.unavailable.Add(-1)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"code": "TRANSIENT_CONFLICT", "message": "concurrent update, please retry"})
			return
		}
		writeJSON(w, http.StatusOK, dto.ClaimSpinResponseDTO{Claimed: true, RewardCents: 10000})
	})
	mux.HandleFunc("/api/me/claim-daily-reward", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"code": "NOT_ELIGIBLE", "message": "not eligible for this reward"})
	})
	return mux
}

func newSession(t *testing.T, api *fakeAPI) *Session {
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)
	s, err := New(server.URL + "/")
	require.NoError(t, err)
	s.backoff = time.Millisecond
	return s
}

func TestSession_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	api := &fakeAPI{validToken: "t1", refreshOK: true, refreshDelay: 50 * time.Millisecond}
	s := newSession(t, api)

	_, err := s.Login(context.Background(), "abel@example.com", "secret1")
	require.NoError(t, err)
	api.mu.Lock()
	api.validToken = "expired"
	api.mu.Unlock()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), api.refreshCalls.Load())
	assert.Equal(t, "t2", s.Token())
}

func TestSession_RefreshFailureReturnsOriginal401(t *testing.T) {
	api := &fakeAPI{validToken: "t1", refreshOK: false}
	s := newSession(t, api)

	_, err := s.Login(context.Background(), "abel@example.com", "secret1")
	require.NoError(t, err)
	api.mu.Lock()
	api.validToken = "expired"
	api.mu.Unlock()

	_, err = s.Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code, "the /me reply, not the refresh reply")
	assert.Equal(t, int64(1), api.refreshCalls.Load())
	assert.Equal(t, int64(1), api.meCalls.Load(), "no replay after a failed refresh")
}

func TestSession_RefreshDoesNotRecurse(t *testing.T) {
	api := &fakeAPI{validToken: "t1", refreshOK: false}
	s := newSession(t, api)

	err := s.Do(context.Background(), http.MethodPost, refreshPath, nil, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, int64(1), api.refreshCalls.Load())
}

func TestSession_Hydrate(t *testing.T) {
	t.Run("Restores from cookie once", func(t *testing.T) {
		api := &fakeAPI{validToken: "t1", refreshOK: true}
		s := newSession(t, api)
		_, err := s.Login(context.Background(), "abel@example.com", "secret1")
		require.NoError(t, err)
		s.setToken("")

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				user, err := s.Hydrate(context.Background())
				assert.NoError(t, err)
				assert.Equal(t, money.Cents(5000), user.BalanceCents)
			}()
		}
		wg.Wait()

		_, err = s.Hydrate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), api.meCalls.Load())
		assert.Equal(t, int64(1), api.refreshCalls.Load())
	})

	t.Run("No session", func(t *testing.T) {
		api := &fakeAPI{validToken: "t1", refreshOK: true}
		s := newSession(t, api)

		_, err := s.Hydrate(context.Background())
		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.Nil(t, s.User())
	})
}

func TestSession_LogoutClearsState(t *testing.T) {
	api := &fakeAPI{validToken: "t1", refreshOK: true}
	s := newSession(t, api)
	_, err := s.Login(context.Background(), "abel@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.Hydrate(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestSession_RetriesTransientErrors(t *testing.T) {
	tests := []struct {
		name        string
		unavailable int64
		retries     int
		wantStatus  int
	}{
		{name: "Recovers", unavailable: 2, retries: 2},
		{name: "Gives up", unavailable: 3, retries: 2, wantStatus: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{validToken: "t1", refreshOK: true}
			api.unavailable.Store(tt.unavailable)
			s := newSession(t, api)
			s.retries = tt.retries
			_, err := s.Login(context.Background(), "abel@example.com", "secret1")
			require.NoError(t, err)

			resp, err := s.ClaimSpin(context.Background())
			if tt.wantStatus != 0 {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.wantStatus, apiErr.Status)
				assert.Equal(t, "TRANSIENT_CONFLICT", apiErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, money.Cents(10000), resp.RewardCents)
		})
	}
}

func TestSession_BusinessErrorsAreNotRetried(t *testing.T) {
	api := &fakeAPI{validToken: "t1", refreshOK: true}
	s := newSession(t, api)
	_, err := s.Login(context.Background(), "abel@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.ClaimDailyReward(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "NOT_ELIGIBLE", apiErr.Code)
	assert.Zero(t, api.refreshCalls.Load())
}
