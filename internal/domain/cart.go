package domain

import "time"

// Abandoned cart reminder stages, in send order.
const (
	CartStageFirst  = 1
	CartStageSecond = 2
	CartStageThird  = 3
)

// AbandonedCart tracks a checkout that was started but never paid.
// Each reminder stage is sent at most once.
type AbandonedCart struct {
	ID             string
	Email          string
	Items          []OrderItem
	Subtotal       float64
	Recovered      bool
	Email1Sent     bool
	Email1SentAt   *time.Time
	Email2Sent     bool
	Email2SentAt   *time.Time
	Email3Sent     bool
	Email3SentAt   *time.Time
	LastActivityAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StageSent reports whether the given reminder stage was already sent.
func (c AbandonedCart) StageSent(stage int) bool {
	switch stage {
	case CartStageFirst:
		return c.Email1Sent
	case CartStageSecond:
		return c.Email2Sent
	case CartStageThird:
		return c.Email3Sent
	}
	return true
}

// StageDue reports whether a reminder stage is due given the cart age.
func (c AbandonedCart) StageDue(stage int, now time.Time) bool {
	age := now.Sub(c.LastActivityAt)
	switch stage {
	case CartStageFirst:
		return age >= time.Hour
	case CartStageSecond:
		return age >= 24*time.Hour
	case CartStageThird:
		return age >= 72*time.Hour
	}
	return false
}

// Subscriber is a marketing list entry.
type Subscriber struct {
	ID           string
	Email        string
	Source       string
	Active       bool
	SubscribedAt time.Time
}
