package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hashService := &HashService{Cost: bcrypt.MinCost}

	tests := []struct {
		name        string
		password    string
		expectError bool
	}{
		{
			name:        "Valid Password",
			password:    "securepassword",
			expectError: false,
		},
		{
			name:        "Empty Password",
			password:    "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashedPassword, err := hashService.HashPassword(tt.password)

			if tt.expectError {
				assert.ErrorIs(t, err, ErrEmptyPassword)
				assert.Empty(t, hashedPassword)
			} else {
				assert.NoError(t, err)
				assert.NotEqual(t, tt.password, hashedPassword)
			}
		})
	}
}

func TestComparePassword(t *testing.T) {
	hashService := &HashService{Cost: bcrypt.MinCost}
	hashed, err := hashService.HashPassword("1234")
	assert.NoError(t, err)

	tests := []struct {
		name        string
		hashed      string
		password    string
		expectMatch bool
	}{
		{name: "Matching Password", hashed: hashed, password: "1234", expectMatch: true},
		{name: "Non-Matching Password", hashed: hashed, password: "4321", expectMatch: false},
		{name: "No Stored Hash", hashed: "", password: "", expectMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectMatch, hashService.ComparePassword(tt.hashed, tt.password))
		})
	}
}

func TestNewOpaqueToken(t *testing.T) {
	token, digest := NewOpaqueToken()
	other, _ := NewOpaqueToken()

	assert.NotEqual(t, token, other)
	assert.Equal(t, HashToken(token), digest)
	assert.Len(t, digest, 64)
	assert.NotEqual(t, token, digest)
}
