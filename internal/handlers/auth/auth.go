package auth

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=auth

import (
	"context"
	"net/http"
	"time"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/internal/dto"
	"github.com/GlebRadaev/rewardwallet/internal/service/authservice"
	"github.com/GlebRadaev/rewardwallet/pkg/utils"
)

const (
	RefreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth"
)

type Service interface {
	Register(ctx context.Context, r authservice.Registration) (*domain.User, error)
	Login(ctx context.Context, email string, password string) (*authservice.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*authservice.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, password string, confirm string) error
}

type AuthHandler struct {
	authService  Service
	cookieSecure bool
}

func New(authService Service, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func refreshToken(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, tokens *authservice.Tokens) {
	h.setRefreshCookie(w, tokens.RefreshToken, tokens.RefreshExpiresAt)
	utils.RespondWithJSON(w, http.StatusOK, dto.AuthResponseDTO{
		AccessToken: tokens.AccessToken,
		User:        dto.NewUserDTO(tokens.User),
	})
}

// Register godoc
//
//	@Summary		Register a new user
//	@Description	Create a user with a wallet. An optional invite code links the new user to a referrer.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterRequestDTO	true	"Register request body"
//	@Success		201		{object}	dto.RegisterResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or invite code"
//	@Failure		409		{object}	utils.Response	"Email already registered"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	user, err := h.authService.Register(r.Context(), authservice.Registration{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		InviteCode:      req.InviteCode,
	})
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.RegisterResponseDTO{User: dto.NewUserDTO(user)})
}

// Login godoc
//
//	@Summary		Authenticate user
//	@Description	Log in with email and password. The access token is returned in the body, the refresh token in an HttpOnly cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.AuthResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Failure		403		{object}	utils.Response	"Account disabled"
//	@Failure		429		{object}	utils.Response	"Too many requests"
//	@Router			/api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	h.respondWithTokens(w, tokens)
}

// Refresh godoc
//
//	@Summary		Refresh the access token
//	@Description	Rotate the refresh cookie and issue a new access token.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	dto.AuthResponseDTO
//	@Failure		401	{object}	utils.Response	"Missing, expired or reused refresh token"
//	@Router			/api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.authService.Refresh(r.Context(), refreshToken(r))
	if err != nil {
		h.clearRefreshCookie(w)
		utils.RespondWithDomainError(w, err)
		return
	}
	h.respondWithTokens(w, tokens)
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	End the session behind the refresh cookie.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	dto.MessageResponseDTO
//	@Router			/api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), refreshToken(r)); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	h.clearRefreshCookie(w)
	utils.RespondWithJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "Logged out"})
}

// ForgotPassword godoc
//
//	@Summary		Request a password reset
//	@Description	Always answers 200 so that registered emails cannot be discovered.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ForgotPasswordRequestDTO	true	"Email"
//	@Success		200		{object}	dto.MessageResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Router			/api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MessageResponseDTO{
		Message: "If the email is registered, a reset link has been issued",
	})
}

// ResetPassword godoc
//
//	@Summary		Reset the password
//	@Description	Set a new password with a one-time reset token. Every session of the user ends.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ResetPasswordRequestDTO	true	"Reset request body"
//	@Success		200		{object}	dto.MessageResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or mismatched passwords"
//	@Failure		401		{object}	utils.Response	"Invalid or expired token"
//	@Router			/api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequestDTO
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "Password has been reset"})
}
