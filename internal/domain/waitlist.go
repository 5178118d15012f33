package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WaitlistEntry is one (email, product, variant) interest registration.
// Position is assigned at creation and never reused; Sizes maps size label to
// requested quantity and is merged on repeat joins.
type WaitlistEntry struct {
	ID          string
	Email       string
	ProductID   int
	ProductName string
	Variant     string
	Sizes       map[string]int
	SizeDisplay string
	Image       string
	Position    int
	AccessCode  string
	Notified    bool
	Purchased   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SizeSelection is the structured size input format.
type SizeSelection struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// ParseSizeSelections folds structured selections into a canonical size→qty map.
func ParseSizeSelections(selections []SizeSelection) map[string]int {
	sizes := make(map[string]int, len(selections))
	for _, sel := range selections {
		label := strings.TrimSpace(sel.Size)
		if label == "" {
			continue
		}
		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		sizes[label] += qty
	}
	return sizes
}

// ParseLegacySizeString parses the legacy delimited format
// "M (Men's) x2, L (Men's) x1": entries split on ", ", quantity split on the
// last " x" occurrence, quantity defaulting to 1 when absent or unparseable.
func ParseLegacySizeString(raw string) map[string]int {
	sizes := make(map[string]int)
	for _, part := range strings.Split(raw, ", ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label := part
		qty := 1
		if idx := strings.LastIndex(part, " x"); idx >= 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(part[idx+2:])); err == nil && n > 0 {
				label = strings.TrimSpace(part[:idx])
				qty = n
			}
		}
		sizes[label] += qty
	}
	return sizes
}

// MergeSizes sums requested quantities per size label into a copy of existing.
func MergeSizes(existing, requested map[string]int) map[string]int {
	merged := make(map[string]int, len(existing)+len(requested))
	for size, qty := range existing {
		merged[size] = qty
	}
	for size, qty := range requested {
		merged[size] += qty
	}
	return merged
}

// SizesDisplay renders a size map as the "M x2, L x1" display string with
// deterministic label ordering.
func SizesDisplay(sizes map[string]int) string {
	labels := make([]string, 0, len(sizes))
	for label := range sizes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s x%d", label, sizes[label]))
	}
	return strings.Join(parts, ", ")
}
