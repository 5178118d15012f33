package ports

import (
	"context"
	"time"
)

// SessionData is the cached envelope for an authenticated customer
// session. It carries enough context to skip a user lookup on most
// requests.
type SessionData struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps opaque customer session tokens with TTL.
type SessionStore interface {
	Put(ctx context.Context, token string, data SessionData, ttl time.Duration) error
	Get(ctx context.Context, token string) (*SessionData, error)
	Delete(ctx context.Context, token string) error
}

// AdminSessionStore keeps opaque admin console tokens. Kept separate
// from customer sessions so the two namespaces can never collide.
type AdminSessionStore interface {
	Put(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

// VisitorStore tracks live storefront presence. A visitor counts as
// active while its last heartbeat is inside the activity window.
type VisitorStore interface {
	Touch(ctx context.Context, visitorID string, at time.Time) error
	ActiveCount(ctx context.Context, since time.Time) (int, error)
}
