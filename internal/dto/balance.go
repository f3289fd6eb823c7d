package dto

import (
	"time"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/pkg/money"
)

type UserDTO struct {
	ID        int64     `json:"id" example:"1"`
	Name      string    `json:"name" example:"Abel Tesfaye"`
	Email     string    `json:"email" example:"abel@example.com"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role" example:"USER"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// UserRefDTO names the other party of a transfer, order or bonus.
type UserRefDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// WalletUserDTO is a user together with their wallet balances.
type WalletUserDTO struct {
	UserDTO
	BalanceCents         money.Cents `json:"balanceCents" example:"12000"`
	ReservedBalanceCents money.Cents `json:"reservedBalanceCents" example:"0"`
	AvailableCents       money.Cents `json:"availableCents" example:"12000"`
	ReferralCode         string      `json:"referralCode" example:"79927398"`
	Points               int64       `json:"points" example:"80"`
	HasWithdrawPassword  bool        `json:"hasWithdrawPassword"`
}

func NewWalletUserDTO(u *domain.User, a *domain.Account) WalletUserDTO {
	return WalletUserDTO{
		UserDTO:              NewUserDTO(u),
		BalanceCents:         a.BalanceCents,
		ReservedBalanceCents: a.ReservedBalanceCents,
		AvailableCents:       a.Available(),
		ReferralCode:         a.ReferralCode,
		Points:               a.Points,
		HasWithdrawPassword:  a.HasWithdrawPassword(),
	}
}

type MeResponseDTO struct {
	User      WalletUserDTO `json:"user"`
	TeamCount int           `json:"teamCount"`
}

type AccountStatsResponseDTO struct {
	OrdersTotal          int         `json:"ordersTotal"`
	ApprovedOrders       int         `json:"approvedOrders"`
	ApprovedDepositCents money.Cents `json:"approvedDepositCents"`
	ReferralBonusCents   money.Cents `json:"referralBonusCents"`
	TeamCount            int         `json:"teamCount"`
	BalanceCents         money.Cents `json:"balanceCents"`
	ReservedCents        money.Cents `json:"reservedBalanceCents"`
	AvailableCents       money.Cents `json:"availableCents"`
	Points               int64       `json:"points"`
}

func NewAccountStatsDTO(s *domain.AccountStats) AccountStatsResponseDTO {
	return AccountStatsResponseDTO{
		OrdersTotal:          s.OrdersTotal,
		ApprovedOrders:       s.ApprovedOrders,
		ApprovedDepositCents: s.ApprovedDepositCents,
		ReferralBonusCents:   s.ReferralBonusCents,
		TeamCount:            s.TeamCount,
		BalanceCents:         s.BalanceCents,
		ReservedCents:        s.ReservedCents,
		AvailableCents:       s.AvailableCents,
		Points:               s.Points,
	}
}

// ActivityMetaDTO carries the details of one activity. Transfers also name
// the counterparty as to (SEND) or from (RECEIVE).
type ActivityMetaDTO struct {
	domain.ActivityMeta
	To   *UserRefDTO `json:"to,omitempty"`
	From *UserRefDTO `json:"from,omitempty"`
}

type ActivityItemDTO struct {
	ID                 int64           `json:"id"`
	Kind               string          `json:"kind" example:"SPIN_REWARD"`
	Direction          string          `json:"direction" example:"IN"`
	AmountCents        money.Cents     `json:"amountCents"`
	SignedAmountCents  money.Cents     `json:"signedAmountCents"`
	BalanceAfterCents  money.Cents     `json:"balanceAfterCents"`
	ReservedAfterCents money.Cents     `json:"reservedAfterCents"`
	Meta               ActivityMetaDTO `json:"meta"`
	CreatedAt          time.Time       `json:"createdAt"`
}

func NewActivityItemDTO(a *domain.Activity) ActivityItemDTO {
	meta := ActivityMetaDTO{ActivityMeta: a.Meta}
	if a.Meta.CounterpartyID != nil {
		ref := &UserRefDTO{ID: *a.Meta.CounterpartyID, Name: a.Meta.CounterpartyName, Email: a.Meta.CounterpartyEmail}
		switch a.Kind {
		case domain.KindSend:
			meta.To = ref
		case domain.KindReceive:
			meta.From = ref
		}
	}
	return ActivityItemDTO{
		ID:                 a.ID,
		Kind:               string(a.Kind),
		Direction:          string(a.Direction),
		AmountCents:        a.AmountCents,
		SignedAmountCents:  a.SignedAmount(),
		BalanceAfterCents:  a.BalanceAfterCents,
		ReservedAfterCents: a.ReservedAfterCents,
		Meta:               meta,
		CreatedAt:          a.CreatedAt,
	}
}

type ActivityResponseDTO struct {
	Items []ActivityItemDTO `json:"items"`
}

type TeamOrderDTO struct {
	ID          int64       `json:"id"`
	Status      string      `json:"status"`
	AmountCents money.Cents `json:"amountCents"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type TeamMemberDTO struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"createdAt"`
	IsActive     bool           `json:"isActive"`
	BalanceCents money.Cents    `json:"balanceCents"`
	Points       int64          `json:"points"`
	Orders       []TeamOrderDTO `json:"orders"`
}

type TeamResponseDTO struct {
	TeamMembers []TeamMemberDTO `json:"teamMembers"`
}

func NewTeamResponseDTO(members []domain.TeamMember) TeamResponseDTO {
	resp := TeamResponseDTO{TeamMembers: make([]TeamMemberDTO, 0, len(members))}
	for _, m := range members {
		orders := make([]TeamOrderDTO, 0, len(m.Orders))
		for _, o := range m.Orders {
			orders = append(orders, TeamOrderDTO{ID: o.ID, Status: string(o.Status), AmountCents: o.AmountCents, CreatedAt: o.CreatedAt})
		}
		resp.TeamMembers = append(resp.TeamMembers, TeamMemberDTO{
			ID:           m.ID,
			Name:         m.Name,
			Email:        m.Email,
			CreatedAt:    m.CreatedAt,
			IsActive:     m.IsActive,
			BalanceCents: m.BalanceCents,
			Points:       m.Points,
			Orders:       orders,
		})
	}
	return resp
}

type ReferralBonusOrderDTO struct {
	Product struct {
		Name string `json:"name"`
	} `json:"product"`
}

type ReferralBonusDTO struct {
	ID          int64                 `json:"id"`
	AmountCents money.Cents           `json:"amountCents"`
	Tier        int                   `json:"tier"`
	CreatedAt   time.Time             `json:"createdAt"`
	Referred    UserRefDTO            `json:"referred"`
	Order       ReferralBonusOrderDTO `json:"order"`
}

type ReferralBonusesResponseDTO struct {
	Bonuses []ReferralBonusDTO `json:"bonuses"`
}

func NewReferralBonusesDTO(views []domain.ReferralBonusView) ReferralBonusesResponseDTO {
	resp := ReferralBonusesResponseDTO{Bonuses: make([]ReferralBonusDTO, 0, len(views))}
	for _, v := range views {
		b := ReferralBonusDTO{
			ID:          v.ID,
			AmountCents: v.AmountCents,
			Tier:        v.Tier,
			CreatedAt:   v.CreatedAt,
			Referred:    UserRefDTO{ID: v.ReferredID, Name: v.ReferredName, Email: v.ReferredEmail},
		}
		b.Order.Product.Name = v.ProductName
		resp.Bonuses = append(resp.Bonuses, b)
	}
	return resp
}
