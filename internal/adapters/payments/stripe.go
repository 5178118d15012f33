package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

// StripeGateway drives Stripe hosted checkout over its REST API.
type StripeGateway struct {
	client        *http.Client
	baseURL       string
	secretKey     string
	webhookSecret string
}

func NewStripeGateway(baseURL, secretKey, webhookSecret string, timeout time.Duration) *StripeGateway {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StripeGateway{
		client:        &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
	}
}

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentIntent string `json:"payment_intent"`
	AmountTotal   int64  `json:"amount_total"`
	CustomerEmail string `json:"customer_email"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *StripeGateway) CreateSession(ctx context.Context, params ports.CheckoutSessionParams) (ports.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("customer_email", params.Email)
	for i, item := range params.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(int64(item.Price*100+0.5), 10))
		name := item.ProductName
		if item.Color != "" || item.Size != "" {
			name = fmt.Sprintf("%s (%s %s)", item.ProductName, item.Color, item.Size)
		}
		form.Set(prefix+"[price_data][product_data][name]", name)
	}
	if params.Shipping > 0 {
		prefix := fmt.Sprintf("line_items[%d]", len(params.Items))
		form.Set(prefix+"[quantity]", "1")
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(int64(params.Shipping*100+0.5), 10))
		form.Set(prefix+"[price_data][product_data][name]", "Shipping")
	}
	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	var session stripeSession
	if err := g.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return ports.CheckoutSession{}, err
	}
	return toPortSession(session), nil
}

func (g *StripeGateway) GetSession(ctx context.Context, sessionID string) (ports.CheckoutSession, error) {
	var session stripeSession
	if err := g.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return ports.CheckoutSession{}, err
	}
	return toPortSession(session), nil
}

// toPortSession carries status and payment_status through separately.
// A session can be "complete" while payment_status is still "unpaid"
// (delayed payment methods), so callers must gate on payment_status.
func toPortSession(s stripeSession) ports.CheckoutSession {
	return ports.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		PaymentID:     s.PaymentIntent,
		AmountTotal:   float64(s.AmountTotal) / 100,
		Email:         s.CustomerEmail,
	}
}

// VerifyWebhook checks the Stripe-Signature header against the
// endpoint secret. Timestamp is accepted as-signed; replay windows are
// enforced by the idempotent finalize path.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) error {
	if g.webhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}
	var timestamp, v1 string
	for _, part := range strings.Split(signature, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			v1 = v
		}
	}
	if timestamp == "" || v1 == "" {
		return fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func (g *StripeGateway) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read stripe response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr stripeError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe returned %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode stripe response: %w", err)
		}
	}
	return nil
}
