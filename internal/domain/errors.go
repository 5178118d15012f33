package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInsufficientStock signals that a reservation could not be satisfied for a
	// variant. Checkout must abort; the wrap names the failing variant.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrWaitlistFull rejects brand-new waitlist entries once the registry reached
	// its configured capacity. Merges into existing entries are never blocked by it.
	ErrWaitlistFull = errors.New("waitlist is full")
	// ErrInvalidStatus rejects order transitions to a status outside the enumerated
	// lifecycle, or any status change off a terminal order.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidTier rejects credit redemptions that match no redemption tier.
	ErrInvalidTier         = errors.New("invalid redemption tier")
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrPromoRejected covers every promo validation failure (unknown, inactive,
	// expired, exhausted, below minimum). The wrap carries the reason.
	ErrPromoRejected = errors.New("promo code rejected")
	// ErrUpstreamUnavailable surfaces payment/shipping collaborator failures
	// without corrupting local state.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	// ErrInvalidCredentials hides whether email or password failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
)
