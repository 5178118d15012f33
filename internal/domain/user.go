package domain

import "time"

// SignupBonusCredits is granted once at account creation.
const SignupBonusCredits = 10

// User is a storefront account. The credit fields maintain the identity
// TotalCreditsEarned - TotalCreditsRedeemed == Credits.
type User struct {
	ID                   string
	Email                string
	PasswordHash         string
	FirstName            string
	LastName             string
	Credits              int
	TotalCreditsEarned   int
	TotalCreditsRedeemed int
	FirstOrderDiscount   string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// PublicProfile is the safe subset returned to the client.
type PublicProfile struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Credits            int    `json:"credits"`
	TotalCreditsEarned int    `json:"total_credits_earned"`
	FirstOrderDiscount string `json:"first_order_discount,omitempty"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Credits:            u.Credits,
		TotalCreditsEarned: u.TotalCreditsEarned,
		FirstOrderDiscount: u.FirstOrderDiscount,
	}
}
