package auth

//go:generate mockgen -source=hash.go -destination=mock_hash.go -package=auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmptyPassword = errors.New("password cannot be empty")

type HashServiceInterface interface {
	HashPassword(password string) (string, error)
	ComparePassword(hashedPassword string, password string) bool
}

// HashService hashes login and withdraw passwords with bcrypt.
type HashService struct {
	Cost int
}

func NewHashService() *HashService {
	return &HashService{Cost: bcrypt.DefaultCost}
}

func (b *HashService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b *HashService) ComparePassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// NewOpaqueToken returns a random token for the client and the digest to store.
func NewOpaqueToken() (token, digest string) {
	token = uuid.NewString() + uuid.NewString()
	return token, HashToken(token)
}

// HashToken is the stored form of a refresh or reset token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
