// Package emailjs implements the ContactRelay port using the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ContactRelay = (*Relay)(nil)

// DefaultEndpoint is the EmailJS send API.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

const sendTimeout = 10 * time.Second

// Config identifies the EmailJS service and template a message is rendered with.
type Config struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
}

// Complete reports whether every field needed to send is set.
func (c Config) Complete() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}

// Relay posts contact messages to EmailJS.
type Relay struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	FromName string `json:"from_name"`
	ReplyTo  string `json:"reply_to"`
	Message  string `json:"message"`
}

// NewRelay creates a Relay for the public EmailJS endpoint.
func NewRelay(cfg Config) *Relay {
	return NewRelayWithEndpoint(cfg, DefaultEndpoint, &http.Client{Timeout: sendTimeout})
}

// NewRelayWithEndpoint creates a Relay with a custom endpoint and http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewRelayWithEndpoint(cfg Config, endpoint string, httpClient *http.Client) *Relay {
	return &Relay{cfg: cfg, endpoint: endpoint, httpClient: httpClient}
}

// Send delivers msg through the configured template. Any non-200 answer is an error.
func (r *Relay) Send(ctx context.Context, msg model.ContactMessage) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:  r.cfg.ServiceID,
		TemplateID: r.cfg.TemplateID,
		UserID:     r.cfg.PublicKey,
		TemplateParams: templateParams{
			FromName: msg.Name,
			ReplyTo:  msg.Email,
			Message:  msg.Message,
		},
	})
	if err != nil {
		return fmt.Errorf("encoding emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending emailjs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
