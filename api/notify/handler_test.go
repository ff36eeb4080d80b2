package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/uzazi-health/chwplan/infra/sms"
)

type fakeSender struct {
	msg sms.Message
	sid string
	err error
}

func (f *fakeSender) Send(ctx context.Context, msg sms.Message) (string, error) {
	f.msg = msg
	return f.sid, f.err
}

type fakeDialer struct {
	call sms.Call
	sid  string
	err  error
}

func (f *fakeDialer) Dial(ctx context.Context, call sms.Call) (string, error) {
	f.call = call
	return f.sid, f.err
}

func TestSMSHandlerAccepted(t *testing.T) {
	sender := &fakeSender{sid: "SM1"}
	h := NewSMSHandler(sender)

	body := `{"to":"+250788000001","body":"visit today","from_number":"+15550001"}`
	r := httptest.NewRequest(http.MethodPost, "/notify/sms", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.SID != "SM1" {
		t.Errorf("sid = %s", out.SID)
	}
	if sender.msg.To != "+250788000001" || sender.msg.From != "+15550001" {
		t.Errorf("message = %+v", sender.msg)
	}
}

func TestSMSHandlerErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"config", sms.ConfigError{Reason: "no sender"}, http.StatusInternalServerError},
		{"provider", sms.ProviderError{StatusCode: 400, Body: "bad number"}, http.StatusBadGateway},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := NewSMSHandler(&fakeSender{err: c.err})
			body := `{"to":"+250788000001","body":"hi"}`
			r := httptest.NewRequest(http.MethodPost, "/notify/sms", strings.NewReader(body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, r)
			if rr.Code != c.want {
				t.Fatalf("expected %d got %d", c.want, rr.Code)
			}
		})
	}
}

func TestSMSHandlerRejects(t *testing.T) {
	h := NewSMSHandler(&fakeSender{sid: "SM1"})

	r := httptest.NewRequest(http.MethodGet, "/notify/sms", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/notify/sms", strings.NewReader(`{"to":"+250788000001"}`))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestVoiceHandler(t *testing.T) {
	dialer := &fakeDialer{sid: "CA1"}
	h := NewVoiceHandler(dialer)

	body := `{"to":"+250788000001","twiml_url":"https://example.org/say.xml"}`
	r := httptest.NewRequest(http.MethodPost, "/notify/voice", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if dialer.call.TwiMLURL != "https://example.org/say.xml" {
		t.Errorf("call = %+v", dialer.call)
	}

	h = NewVoiceHandler(&fakeDialer{err: sms.ConfigError{Reason: "no twiml"}})
	r = httptest.NewRequest(http.MethodPost, "/notify/voice", strings.NewReader(`{"to":"+250788000001"}`))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
}
