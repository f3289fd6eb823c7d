package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
)

func TestMiddleware(t *testing.T) {
	jwtService := NewJWTService("test-secret", time.Minute)
	userToken, _ := jwtService.GenerateJWT(5, string(domain.RoleUser), time.Now())
	adminToken, _ := jwtService.GenerateJWT(6, string(domain.RoleAdmin), time.Now())
	m := NewMiddleware(jwtService)

	var seen int64
	handler := m.Authenticate(RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectedUser int64
	}{
		{name: "No header", expectedCode: http.StatusUnauthorized},
		{name: "Not bearer", header: "Basic abc", expectedCode: http.StatusUnauthorized},
		{name: "Bad token", header: "Bearer nope", expectedCode: http.StatusUnauthorized},
		{name: "Wrong role", header: "Bearer " + userToken, expectedCode: http.StatusForbidden},
		{name: "Admin", header: "Bearer " + adminToken, expectedCode: http.StatusNoContent, expectedUser: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/admin/orders", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedUser, seen)
		})
	}
}
