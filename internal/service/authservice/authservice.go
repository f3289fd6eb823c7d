package authservice

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/pg"
	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/validate"
)

const registerAttempts = 3

type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, userID int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
}

type AccountRepo interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUserID(ctx context.Context, userID int64) (*domain.Account, error)
	FindByReferralCode(ctx context.Context, code string) (*domain.Account, error)
	SetWithdrawPassword(ctx context.Context, userID int64, hash string) error
}

type SessionRepo interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	TakeSession(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
	CreateReset(ctx context.Context, reset *domain.PasswordReset) error
	ConsumeReset(ctx context.Context, tokenHash string, now time.Time) (int64, error)
}

type Settings struct {
	RefreshTTL time.Duration
	ResetTTL   time.Duration
	// ExposeResetTokens logs plaintext reset tokens at debug level. Only for
	// local setups without mail delivery.
	ExposeResetTokens bool
}

// Registration is the input of Register. InviteCode is optional.
type Registration struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	InviteCode      string
}

// Tokens is the result of a login or refresh. RefreshToken goes to the
// client in a cookie and is stored only as a digest.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *domain.User
}

type Service struct {
	users       UserRepo
	accounts    AccountRepo
	sessions    SessionRepo
	txManager   pg.TXManager
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	settings    Settings
	refreshes   singleflight.Group
	newCode     func() string
	now         func() time.Time
}

func New(
	users UserRepo,
	accounts AccountRepo,
	sessions SessionRepo,
	txManager pg.TXManager,
	hashService auth.HashServiceInterface,
	jwtService auth.JWTServiceInterface,
	settings Settings,
) *Service {
	return &Service{
		users:       users,
		accounts:    accounts,
		sessions:    sessions,
		txManager:   txManager,
		hashService: hashService,
		jwtService:  jwtService,
		settings:    settings,
		newCode:     validate.NewReferralCode,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user and their account. An invite code links the new
// account to its referrer.
func (s *Service) Register(ctx context.Context, r Registration) (*domain.User, error) {
	if r.Password != r.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	email := normalizeEmail(r.Email)

	var referrer *domain.Account
	if code := strings.TrimSpace(r.InviteCode); code != "" {
		if !validate.IsReferralCode(code) {
			return nil, domain.ErrInvalidInviteCode
		}
		var err error
		referrer, err = s.accounts.FindByReferralCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
		if referrer == nil {
			zap.L().Info("unknown invite code", zap.String("code", code))
			return nil, domain.ErrInvalidInviteCode
		}
	}

	existingUser, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existingUser != nil {
		zap.L().Info("user already exists", zap.String("email", email))
		return nil, domain.ErrEmailTaken
	}
	hashedPassword, err := s.hashService.HashPassword(r.Password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, fmt.Errorf("register: %w", err)
	}

	var created *domain.User
	for attempt := 0; attempt < registerAttempts; attempt++ {
		err = s.txManager.Begin(ctx, func(ctx context.Context) error {
			created, err = s.users.Create(ctx, &domain.User{
				Name:         strings.TrimSpace(r.Name),
				Email:        email,
				Phone:        strings.TrimSpace(r.Phone),
				PasswordHash: hashedPassword,
				Role:         domain.RoleUser,
				IsActive:     true,
			})
			if err != nil {
				return err
			}
			account := &domain.Account{UserID: created.ID, ReferralCode: s.newCode()}
			if referrer != nil {
				code, referrerID := referrer.ReferralCode, referrer.UserID
				account.ReferredByCode, account.ReferrerID = &code, &referrerID
			}
			_, err = s.accounts.Create(ctx, account)
			return err
		})
		if !errors.Is(err, domain.ErrReferralCodeTaken) {
			break
		}
		zap.L().Info("referral code collision, retrying", zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	zap.L().Info("user successfully registered", zap.Int64("userID", created.ID))
	return created, nil
}

// Login checks the credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Tokens, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil || !s.hashService.ComparePassword(user.PasswordHash, password) {
		zap.L().Info("invalid credentials", zap.String("email", normalizeEmail(email)))
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	zap.L().Info("user successfully authenticated", zap.Int64("userID", user.ID))
	return tokens, nil
}

// Refresh rotates a refresh token. Concurrent calls presenting the same
// token share one rotation and receive the same new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}
	digest := auth.HashToken(refreshToken)
	v, err, _ := s.refreshes.Do(digest, func() (any, error) {
		return s.rotate(context.WithoutCancel(ctx), digest)
	})
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return v.(*Tokens), nil
}

func (s *Service) rotate(ctx context.Context, digest string) (*Tokens, error) {
	var tokens *Tokens
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		session, err := s.sessions.TakeSession(ctx, digest, s.now())
		if err != nil {
			return err
		}
		user, err := s.users.FindByID(ctx, session.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrInvalidToken
		}
		if !user.IsActive {
			return domain.ErrAccountDisabled
		}
		tokens, err = s.issue(ctx, user)
		return err
	})
	return tokens, err
}

func (s *Service) issue(ctx context.Context, user *domain.User) (*Tokens, error) {
	now := s.now()
	access, err := s.jwtService.GenerateJWT(user.ID, string(user.Role), now)
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return nil, err
	}
	refresh, digest := auth.NewOpaqueToken()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: digest,
		ExpiresAt: now.Add(s.settings.RefreshTTL),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: session.ExpiresAt, User: user}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, auth.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ForgotPassword issues a reset token for a known email. Unknown emails are
// not reported, so the caller cannot tell which emails are registered. Only
// the token digest is logged unless ExposeResetTokens is set.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	if user == nil {
		return nil
	}
	token, digest := auth.NewOpaqueToken()
	err = s.sessions.CreateReset(ctx, &domain.PasswordReset{
		TokenHash: digest,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.settings.ResetTTL),
	})
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	zap.L().Info("password reset issued", zap.Int64("userID", user.ID), zap.String("digest", digest))
	if s.settings.ExposeResetTokens {
		zap.L().Debug("password reset token", zap.Int64("userID", user.ID), zap.String("token", token))
	}
	return nil
}

// ResetPassword sets a new password with a one-time token and ends every
// session of the user.
func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if password != confirm {
		return domain.ErrPasswordMismatch
	}
	hashed, err := s.hashService.HashPassword(password)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		userID, err := s.sessions.ConsumeReset(ctx, auth.HashToken(token), s.now())
		if err != nil {
			return err
		}
		if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
			return err
		}
		return s.sessions.DeleteUserSessions(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, password, confirm string) error {
	if password != confirm {
		return domain.ErrPasswordMismatch
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if !s.hashService.ComparePassword(user.PasswordHash, current) {
		return domain.ErrInvalidCredentials
	}
	hashed, err := s.hashService.HashPassword(password)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	zap.L().Info("password changed", zap.Int64("userID", userID))
	return nil
}

// SetWithdrawPassword sets the password guarding transfers and withdrawals.
// Replacing an existing one requires the current withdraw password.
func (s *Service) SetWithdrawPassword(ctx context.Context, userID int64, current, password, confirm string) error {
	if password != confirm {
		return domain.ErrPasswordMismatch
	}
	account, err := s.accounts.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("set withdraw password: %w", err)
	}
	if account == nil {
		return domain.ErrUserNotFound
	}
	if account.HasWithdrawPassword() && !s.hashService.ComparePassword(*account.WithdrawPasswordHash, current) {
		return domain.ErrInvalidWithdrawPassword
	}
	hashed, err := s.hashService.HashPassword(password)
	if err != nil {
		return fmt.Errorf("set withdraw password: %w", err)
	}
	if err := s.accounts.SetWithdrawPassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("set withdraw password: %w", err)
	}
	zap.L().Info("withdraw password set", zap.Int64("userID", userID))
	return nil
}
