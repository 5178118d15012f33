package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/domain"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// ShippoCarrier quotes rates and purchases labels through the Shippo
// REST API.
type ShippoCarrier struct {
	client   *http.Client
	baseURL  string
	apiToken string

	fromAddress map[string]string
}

func NewShippoCarrier(baseURL, apiToken string, fromAddress map[string]string, timeout time.Duration) *ShippoCarrier {
	if baseURL == "" {
		baseURL = "https://api.goshippo.com"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ShippoCarrier{
		client:      &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiToken:    apiToken,
		fromAddress: fromAddress,
	}
}

type shippoRate struct {
	ObjectID     string `json:"object_id"`
	Provider     string `json:"provider"`
	ServiceLevel struct {
		Name string `json:"name"`
	} `json:"servicelevel"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	EstimatedDays int   `json:"estimated_days"`
}

type shippoShipment struct {
	Rates []shippoRate `json:"rates"`
}

type shippoTransaction struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
	Rate           struct {
		Provider string `json:"provider"`
	} `json:"rate"`
	ETA      string   `json:"eta"`
	Messages []struct {
		Text string `json:"text"`
	} `json:"messages"`
}

func (c *ShippoCarrier) QuoteRates(ctx context.Context, addr domain.ShippingAddress, items []domain.OrderItem) ([]ports.ShippingRate, error) {
	totalQty := 0
	for _, item := range items {
		totalQty += item.Quantity
	}
	// Rough parcel sizing: 8oz per apparel unit in one padded mailer.
	weightOz := float64(totalQty) * 8

	body := map[string]any{
		"address_from": c.fromAddress,
		"address_to": map[string]string{
			"name":    strings.TrimSpace(addr.FirstName + " " + addr.LastName),
			"street1": addr.AddressLine1,
			"street2": addr.AddressLine2,
			"city":    addr.City,
			"state":   addr.State,
			"zip":     addr.PostalCode,
			"country": addr.Country,
			"email":   addr.Email,
			"phone":   addr.Phone,
		},
		"parcels": []map[string]string{{
			"length":        "12",
			"width":         "10",
			"height":        "2",
			"distance_unit": "in",
			"weight":        strconv.FormatFloat(weightOz, 'f', 1, 64),
			"mass_unit":     "oz",
		}},
		"async": false,
	}

	var shipment shippoShipment
	if err := c.do(ctx, http.MethodPost, "/shipments/", body, &shipment); err != nil {
		return nil, err
	}

	rates := make([]ports.ShippingRate, 0, len(shipment.Rates))
	for _, r := range shipment.Rates {
		amount, err := strconv.ParseFloat(r.Amount, 64)
		if err != nil {
			continue
		}
		rates = append(rates, ports.ShippingRate{
			ID:       r.ObjectID,
			Carrier:  r.Provider,
			Service:  r.ServiceLevel.Name,
			Amount:   amount,
			Currency: r.Currency,
			Days:     r.EstimatedDays,
		})
	}
	return rates, nil
}

func (c *ShippoCarrier) PurchaseLabel(ctx context.Context, rateID string) (ports.ShippingLabel, error) {
	body := map[string]any{
		"rate":            rateID,
		"label_file_type": "PDF",
		"async":           false,
	}
	var tx shippoTransaction
	if err := c.do(ctx, http.MethodPost, "/transactions/", body, &tx); err != nil {
		return ports.ShippingLabel{}, err
	}
	if tx.Status != "SUCCESS" {
		msg := "label purchase failed"
		if len(tx.Messages) > 0 {
			msg = tx.Messages[0].Text
		}
		return ports.ShippingLabel{}, fmt.Errorf("shippo transaction %s: %s", tx.Status, msg)
	}
	return ports.ShippingLabel{
		TrackingNumber:    tx.TrackingNumber,
		Carrier:           tx.Rate.Provider,
		LabelURL:          tx.LabelURL,
		EstimatedDelivery: tx.ETA,
	}, nil
}

func (c *ShippoCarrier) TrackShipment(ctx context.Context, carrier, trackingNumber string) (string, error) {
	var result struct {
		TrackingStatus struct {
			Status string `json:"status"`
		} `json:"tracking_status"`
	}
	path := "/tracks/" + url.PathEscape(strings.ToLower(carrier)) + "/" + url.PathEscape(trackingNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return "", err
	}
	return result.TrackingStatus.Status, nil
}

func (c *ShippoCarrier) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode shippo request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build shippo request: %w", err)
	}
	req.Header.Set("Authorization", "ShippoToken "+c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("shippo request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read shippo response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("shippo returned %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode shippo response: %w", err)
		}
	}
	return nil
}
