package application

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

// AdminLogin exchanges the console password for an opaque admin token.
func (s *Service) AdminLogin(ctx context.Context, req AdminLoginRequest) (AdminLoginResponse, error) {
	if s.cfg.AdminPassword == "" {
		return AdminLoginResponse{}, fmt.Errorf("%w: admin access is not configured", domain.ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.AdminPassword)) != 1 {
		return AdminLoginResponse{}, domain.ErrInvalidCredentials
	}

	token := randomHex(32)
	expires := s.nowFn().Add(s.cfg.AdminSessionTTL)
	if err := s.adminTokens.Put(ctx, token, s.cfg.AdminSessionTTL); err != nil {
		return AdminLoginResponse{}, fmt.Errorf("store admin session: %w", err)
	}
	return AdminLoginResponse{Token: token, Expires: expires}, nil
}

// VerifyAdminToken checks an admin session token.
func (s *Service) VerifyAdminToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrUnauthorized
	}
	ok, err := s.adminTokens.Exists(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// AdminLogout revokes an admin token.
func (s *Service) AdminLogout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.adminTokens.Delete(ctx, token)
}

// RecordVisitor registers a storefront presence heartbeat.
func (s *Service) RecordVisitor(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return fmt.Errorf("%w: visitor id is required", domain.ErrInvalidInput)
	}
	return s.visitors.Touch(ctx, visitorID, s.nowFn())
}

// ActiveVisitors counts distinct visitors seen inside the activity
// window.
func (s *Service) ActiveVisitors(ctx context.Context) (int, error) {
	return s.visitors.ActiveCount(ctx, s.nowFn().Add(-s.cfg.VisitorWindow))
}

// Dashboard aggregates the admin console landing stats. A cache
// outage zeroes the visitor count instead of failing the whole view.
func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats

	orders, err := s.OrderStatsReport(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.Orders = orders

	inventory, err := s.InventoryStatsReport(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.Inventory = inventory

	waitlist, err := s.waitlist.Stats(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.Waitlist = waitlist

	subs, err := s.subscribers.Count(ctx, true)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.Subscribers = subs

	visitors, err := s.ActiveVisitors(ctx)
	if err != nil {
		slog.Default().WarnContext(ctx, "visitor count unavailable",
			"layer", "application",
			"operation", "dashboard",
			"error", err,
		)
		visitors = 0
	}
	stats.Visitors = visitors

	return stats, nil
}
