package application

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
)

// normalizeEmail canonicalizes and validates email format before
// persistence and comparison.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

// randomHex returns a cryptographically random hex token.
func randomHex(bytesLen int) string {
	raw := make([]byte, bytesLen)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}

// randomUpper returns a random upper-case alphanumeric code, skipping
// ambiguous characters so codes survive being read aloud.
func randomUpper(length int) string {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	raw := make([]byte, length)
	_, _ = rand.Read(raw)
	out := make([]byte, length)
	for i, b := range raw {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}

// roundCents rounds a dollar amount to two decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateLines(items []domain.ReservationLine) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	for _, line := range items {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
		}
		if line.Color == "" || line.Size == "" {
			return fmt.Errorf("%w: color and size are required", domain.ErrInvalidInput)
		}
	}
	return nil
}
