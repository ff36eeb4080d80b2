// Package notify exposes direct SMS and voice notification over HTTP.
// Missing provider configuration surfaces as 500; a provider rejection
// or transport failure surfaces as 502.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/uzazi-health/chwplan/infra/sms"
)

// MessageSender sends one SMS and returns the provider message SID.
type MessageSender interface {
	Send(ctx context.Context, msg sms.Message) (sid string, err error)
}

// CallDialer places one voice call and returns the provider call SID.
type CallDialer interface {
	Dial(ctx context.Context, call sms.Call) (sid string, err error)
}

type sidResponse struct {
	SID string `json:"sid"`
}

// NewSMSHandler returns an HTTP handler sending an SMS via POST /notify/sms.
// Accepted sends answer 202 with the message SID.
func NewSMSHandler(sender MessageSender) http.Handler {
	type request struct {
		To                  string `json:"to"`
		Body                string `json:"body"`
		FromNumber          string `json:"from_number,omitempty"`
		MessagingServiceSID string `json:"messaging_service_sid,omitempty"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.To == "" || req.Body == "" {
			http.Error(w, "to and body are required", http.StatusBadRequest)
			return
		}
		sid, err := sender.Send(r.Context(), sms.Message{
			To:                  req.To,
			Body:                req.Body,
			From:                req.FromNumber,
			MessagingServiceSID: req.MessagingServiceSID,
		})
		if err != nil {
			writeSendError(w, err)
			return
		}
		writeAccepted(w, sid)
	})
}

// NewVoiceHandler returns an HTTP handler placing a call via POST /notify/voice.
func NewVoiceHandler(dialer CallDialer) http.Handler {
	type request struct {
		To         string `json:"to"`
		FromNumber string `json:"from_number,omitempty"`
		TwiMLURL   string `json:"twiml_url,omitempty"`
		TwiML      string `json:"twiml,omitempty"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.To == "" {
			http.Error(w, "to is required", http.StatusBadRequest)
			return
		}
		sid, err := dialer.Dial(r.Context(), sms.Call{
			To:       req.To,
			From:     req.FromNumber,
			TwiMLURL: req.TwiMLURL,
			TwiML:    req.TwiML,
		})
		if err != nil {
			writeSendError(w, err)
			return
		}
		writeAccepted(w, sid)
	})
}

func writeAccepted(w http.ResponseWriter, sid string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(sidResponse{SID: sid}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeSendError(w http.ResponseWriter, err error) {
	var cfgErr sms.ConfigError
	if errors.As(err, &cfgErr) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Error(w, err.Error(), http.StatusBadGateway)
}
