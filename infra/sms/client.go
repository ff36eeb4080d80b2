// Package sms sends SMS and voice notifications through the Twilio REST
// API. It implements the core/notify sender interfaces.
package sms

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/uzazi-health/chwplan/config"
	"github.com/uzazi-health/chwplan/core/logger"
)

const defaultBaseURL = "https://api.twilio.com"

// ConfigError reports missing Twilio configuration. Handlers treat it as a
// server-side configuration failure rather than a provider rejection.
type ConfigError struct {
	Reason string
}

func (e ConfigError) Error() string { return "twilio config: " + e.Reason }

// ProviderError reports a rejection from the Twilio API.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("twilio: unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

// Message is one outbound SMS. From and MessagingServiceSID override the
// configured defaults when set.
type Message struct {
	To                  string
	Body                string
	From                string
	MessagingServiceSID string
}

// Call is one outbound voice call. Inline TwiML takes precedence over the
// TwiML URL.
type Call struct {
	To       string
	From     string
	TwiMLURL string
	TwiML    string
}

// TwilioClient talks to the Twilio REST API using HTTP basic auth.
type TwilioClient struct {
	cfg    config.NotifyConfig
	client *http.Client
	log    logger.Logger
	base   string
}

// NewTwilioClient builds a client from the notify section. Credentials are
// checked per call so a deployment without Twilio still starts.
func NewTwilioClient(cfg config.NotifyConfig, log logger.Logger) *TwilioClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &TwilioClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    log,
		base:   strings.TrimSuffix(base, "/"),
	}
}

// Send delivers msg and returns the Twilio message SID. A messaging
// service SID wins over a plain sender number, matching the provider's
// precedence.
func (c *TwilioClient) Send(ctx context.Context, msg Message) (string, error) {
	if err := c.checkCreds(); err != nil {
		return "", err
	}
	serviceSID := msg.MessagingServiceSID
	if serviceSID == "" {
		serviceSID = c.cfg.MessagingServiceSID
	}
	from := msg.From
	if from == "" {
		from = c.cfg.SMSFrom
	}
	if serviceSID == "" && from == "" {
		return "", ConfigError{Reason: "provide TWILIO_MESSAGING_SERVICE_SID or TWILIO_SMS_FROM to send SMS"}
	}
	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("Body", msg.Body)
	if serviceSID != "" {
		form.Set("MessagingServiceSid", serviceSID)
	} else {
		form.Set("From", from)
	}
	return c.create(ctx, "Messages", form)
}

// Dial places call and returns the Twilio call SID. The caller id falls
// back to the SMS sender number when no dedicated one is configured.
func (c *TwilioClient) Dial(ctx context.Context, call Call) (string, error) {
	if err := c.checkCreds(); err != nil {
		return "", err
	}
	from := call.From
	if from == "" {
		from = c.cfg.VoiceCallerID
	}
	if from == "" {
		from = c.cfg.SMSFrom
	}
	if from == "" {
		return "", ConfigError{Reason: "set TWILIO_VOICE_CALLER_ID or TWILIO_SMS_FROM for outbound calls"}
	}
	twimlURL := call.TwiMLURL
	if twimlURL == "" {
		twimlURL = c.cfg.VoiceTwiMLURL
	}
	if call.TwiML == "" && twimlURL == "" {
		return "", ConfigError{Reason: "provide TWILIO_VOICE_TWIML_URL or inline TwiML for voice calls"}
	}
	form := url.Values{}
	form.Set("To", call.To)
	form.Set("From", from)
	if call.TwiML != "" {
		form.Set("Twiml", call.TwiML)
	} else {
		form.Set("Url", twimlURL)
	}
	return c.create(ctx, "Calls", form)
}

// SendSMS implements notify.SMSSender using the configured sender.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) (string, error) {
	return c.Send(ctx, Message{To: to, Body: body})
}

// PlaceCall implements notify.VoiceCaller. The message is read aloud via
// inline TwiML unless a TwiML URL is configured.
func (c *TwilioClient) PlaceCall(ctx context.Context, to, message string) (string, error) {
	call := Call{To: to}
	if c.cfg.VoiceTwiMLURL == "" && message != "" {
		call.TwiML = sayTwiML(message)
	}
	return c.Dial(ctx, call)
}

func (c *TwilioClient) checkCreds() error {
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" {
		return ConfigError{Reason: "set TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN"}
	}
	return nil
}

func (c *TwilioClient) create(ctx context.Context, resource string, form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s.json", c.base, c.cfg.AccountSID, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", ProviderError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var out struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	c.log.Debugf("twilio %s accepted, sid=%s", resource, out.SID)
	return out.SID, nil
}

func sayTwiML(message string) string {
	var b strings.Builder
	b.WriteString("<Response><Say>")
	// Builder writes never fail.
	_ = xml.EscapeText(&b, []byte(message))
	b.WriteString("</Say></Response>")
	return b.String()
}
