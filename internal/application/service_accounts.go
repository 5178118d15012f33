package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// Signup creates a storefront account with the one-time signup bonus
// and a personal first-order discount code.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AuthResponse{}, err
	}
	if len(req.Password) < 8 {
		return AuthResponse{}, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResponse{}, fmt.Errorf("%w: account already exists", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return AuthResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	user := domain.User{
		ID:                 "user_" + randomHex(12),
		Email:              email,
		PasswordHash:       hash,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Credits:            domain.SignupBonusCredits,
		TotalCreditsEarned: domain.SignupBonusCredits,
		FirstOrderDiscount: "FIRST-" + randomUpper(8),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return AuthResponse{}, err
	}

	maxUses := 1
	firstPromo := domain.PromoCode{
		Code:          user.FirstOrderDiscount,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		Active:        true,
		MaxUses:       &maxUses,
		Description:   "First order discount",
		CreatedAt:     now,
	}
	if err := s.promos.Insert(ctx, firstPromo); err != nil {
		slog.Default().WarnContext(ctx, "failed to mint first-order code",
			"layer", "application",
			"operation", "signup",
			"user_id", user.ID,
			"error", err,
		)
	}

	payload, _ := json.Marshal(map[string]any{
		"user_id": user.ID,
		"email":   email,
	})
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeUserRegistered,
		PartitionKey: user.ID,
		Payload:      payload,
		OccurredAt:   now,
	}); err != nil {
		slog.Default().WarnContext(ctx, "failed to enqueue registration event",
			"layer", "application",
			"operation", "signup",
			"user_id", user.ID,
			"error", err,
		)
	}

	return s.issueSession(ctx, user)
}

// Login validates credentials and issues an opaque session token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return AuthResponse{}, domain.ErrInvalidCredentials
		}
		return AuthResponse{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return AuthResponse{}, domain.ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user domain.User) (AuthResponse, error) {
	now := s.nowFn()
	token := randomHex(32)
	expires := now.Add(s.cfg.SessionTTL)
	data := ports.SessionData{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := s.sessions.Put(ctx, token, data, s.cfg.SessionTTL); err != nil {
		return AuthResponse{}, fmt.Errorf("store session: %w", err)
	}
	return AuthResponse{Token: token, User: user.Public(), Expires: expires}, nil
}

// Logout revokes a session token. Unknown tokens succeed silently.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to its account.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	data, err := s.sessions.Get(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	if data == nil || data.ExpiresAt.Before(s.nowFn()) {
		return domain.User{}, domain.ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, data.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	return user, nil
}
