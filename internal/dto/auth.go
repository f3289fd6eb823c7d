package dto

type RegisterRequestDTO struct {
	Name            string `json:"name" validate:"required,min=2,max=100" example:"Abel Tesfaye"`
	Email           string `json:"email" validate:"required,email" example:"abel@example.com"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,max=32" example:"0911223344"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	InviteCode      string `json:"inviteCode,omitempty" validate:"omitempty,referral" example:"79927398"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"abel@example.com"`
	Password string `json:"password" validate:"required"`
}

// AuthResponseDTO is returned by login and refresh. The refresh token itself
// travels only in the HttpOnly cookie.
type AuthResponseDTO struct {
	AccessToken string  `json:"accessToken"`
	User        UserDTO `json:"user"`
}

type RegisterResponseDTO struct {
	User UserDTO `json:"user"`
}

type ForgotPasswordRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequestDTO struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type ChangePasswordRequestDTO struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type WithdrawPasswordRequestDTO struct {
	CurrentPassword string `json:"currentPassword,omitempty"`
	Password        string `json:"password" validate:"required,min=4,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type MessageResponseDTO struct {
	Message string `json:"message"`
}
