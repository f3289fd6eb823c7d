package dto

import "github.com/GlebRadaev/rewardwallet/internal/domain"

type UsersResponseDTO struct {
	Users []UserDTO `json:"users"`
}

func NewUsersDTO(users []domain.User) UsersResponseDTO {
	resp := UsersResponseDTO{Users: make([]UserDTO, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, NewUserDTO(&users[i]))
	}
	return resp
}

type AdminUserResponseDTO struct {
	User WalletUserDTO `json:"user"`
}

type UpdateUserRequestDTO struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type UserResponseDTO struct {
	User UserDTO `json:"user"`
}

type AnalyticsOrdersDTO struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
}

type AnalyticsResponseDTO struct {
	Users       int                `json:"users"`
	Orders      AnalyticsOrdersDTO `json:"orders"`
	IncomeCents int64              `json:"incomeCents"`
}

func NewAnalyticsDTO(a *domain.Analytics) AnalyticsResponseDTO {
	return AnalyticsResponseDTO{
		Users:       a.Users,
		Orders:      AnalyticsOrdersDTO{Total: a.OrdersTotal, Pending: a.OrdersPending},
		IncomeCents: int64(a.IncomeCents),
	}
}
