package config

import "os"

// NotifyConfig carries Twilio credentials and sender identities for the
// notification endpoints. Fields left empty in the file fall back to the
// conventional TWILIO_* environment variables so secrets can stay out of
// checked-in configuration.
type NotifyConfig struct {
	AccountSID          string `json:"account_sid"`
	AuthToken           string `json:"auth_token"`
	SMSFrom             string `json:"sms_from"`
	MessagingServiceSID string `json:"messaging_service_sid"`
	VoiceCallerID       string `json:"voice_caller_id"`
	VoiceTwiMLURL       string `json:"voice_twiml_url"`
	// BaseURL overrides the Twilio API host, used by tests.
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults fills empty fields from the environment and applies the
// default request timeout. Credentials are not validated here: endpoints
// report missing configuration per request.
func (c *NotifyConfig) SetDefaults() {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&c.AccountSID, "TWILIO_ACCOUNT_SID")
	fill(&c.AuthToken, "TWILIO_AUTH_TOKEN")
	fill(&c.SMSFrom, "TWILIO_SMS_FROM")
	fill(&c.MessagingServiceSID, "TWILIO_MESSAGING_SERVICE_SID")
	fill(&c.VoiceCallerID, "TWILIO_VOICE_CALLER_ID")
	fill(&c.VoiceTwiMLURL, "TWILIO_VOICE_TWIML_URL")
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}
