package domain

import (
	"math"
	"time"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// PromoCode is stored under its canonical upper-case code.
// Invariant: Uses <= *MaxUses whenever MaxUses is set.
type PromoCode struct {
	Code          string
	DiscountType  string
	DiscountValue float64
	MinOrder      float64
	MaxUses       *int
	Uses          int
	Active        bool
	ExpiresAt     *time.Time
	Description   string
	CreatedAt     time.Time
}

// Exhausted reports whether the usage limit has been reached.
func (p PromoCode) Exhausted() bool {
	return p.MaxUses != nil && p.Uses >= *p.MaxUses
}

func (p PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// DiscountAmount computes the discount for a subtotal, rounded to cents.
// Percentage codes are uncapped; fixed codes never exceed the subtotal.
func (p PromoCode) DiscountAmount(subtotal float64) float64 {
	var amount float64
	if p.DiscountType == DiscountPercentage {
		amount = subtotal * p.DiscountValue / 100
	} else {
		amount = math.Min(p.DiscountValue, subtotal)
	}
	return math.Round(amount*100) / 100
}

// CreditTier is one redemption step of the loyalty ledger.
type CreditTier struct {
	Credits  int     `json:"credits"`
	Discount float64 `json:"discount"`
	Label    string  `json:"label"`
}

// CreditTiers is the fixed redemption table, ascending by credit cost.
var CreditTiers = []CreditTier{
	{Credits: 100, Discount: 5.00, Label: "$5 off"},
	{Credits: 200, Discount: 15.00, Label: "$15 off"},
	{Credits: 300, Discount: 25.00, Label: "$25 off"},
}

// FindCreditTier returns the tier matching an exact credit cost.
func FindCreditTier(credits int) (CreditTier, bool) {
	for _, tier := range CreditTiers {
		if tier.Credits == credits {
			return tier, true
		}
	}
	return CreditTier{}, false
}
