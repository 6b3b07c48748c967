package events

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SignatureHeader carries hex(HMAC-SHA256(secret, body)) when a secret is set.
const SignatureHeader = "X-Proptic-Signature"

// WebhookPublisher POSTs each event as JSON. 5xx responses and transport
// errors are retried.
type WebhookPublisher struct {
	httpClient *resty.Client
	url        string
	secret     string
}

func NewWebhookPublisher(url, secret string, retries int) *WebhookPublisher {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &WebhookPublisher{httpClient: client, url: url, secret: secret}
}

// Sign returns the signature for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *WebhookPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req := p.httpClient.R().SetContext(ctx).SetBody(body)
	if p.secret != "" {
		req.SetHeader(SignatureHeader, Sign(p.secret, body))
	}
	resp, err := req.Post(p.url)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}

func (p *WebhookPublisher) Close() error { return nil }
