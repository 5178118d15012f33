package events

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// WebhookPublisher delivers domain events as JSON POSTs to per-type
// webhook URLs. Event types without a configured URL fall back to the
// default URL; with no URL at all the event is dropped with a log so a
// partially configured deployment keeps draining its outbox.
type WebhookPublisher struct {
	client     *http.Client
	logger     *slog.Logger
	routes     map[string]string
	defaultURL string
}

func NewWebhookPublisher(logger *slog.Logger, routes map[string]string, defaultURL string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookPublisher{
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		routes:     routes,
		defaultURL: defaultURL,
	}
}

func (p *WebhookPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	url := p.routes[eventType]
	if url == "" {
		url = p.defaultURL
	}
	if url == "" {
		p.logger.WarnContext(ctx, "no webhook route for event; dropping",
			"module", "events.webhook_publisher",
			"layer", "adapter",
			"operation", "publish_event",
			"event_type", eventType,
		)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", eventType)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s returned %d", url, resp.StatusCode)
	}
	return nil
}

// LoggingPublisher is the dev/test fallback delivery sink.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.logger.InfoContext(ctx, "published event", "event_type", eventType, "payload", string(payload))
	return nil
}
