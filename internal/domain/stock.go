package domain

import "time"

// Variant identifies a stock keeping unit: one product in one color and size.
type Variant struct {
	ProductID int    `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// StockEntry is the per-variant ledger row. Reserved counts units held by
// in-flight checkouts; they stay part of Quantity until committed.
// Invariant: 0 <= Reserved <= Quantity.
type StockEntry struct {
	ProductID         int
	ProductName       string
	Color             string
	Size              string
	Quantity          int
	Reserved          int
	LowStockThreshold int
	UpdatedAt         time.Time
}

// Available is the quantity a new checkout may still reserve.
func (e StockEntry) Available() int {
	return e.Quantity - e.Reserved
}

func (e StockEntry) LowStock() bool {
	return e.Available() <= e.LowStockThreshold
}

func (e StockEntry) Variant() Variant {
	return Variant{ProductID: e.ProductID, Color: e.Color, Size: e.Size}
}

// ReservationLine is one requested line of a (multi-line) reserve, release or
// commit call.
type ReservationLine struct {
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Color       string `json:"color"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
}

func (l ReservationLine) Variant() Variant {
	return Variant{ProductID: l.ProductID, Color: l.Color, Size: l.Size}
}
