// Package notify defines the outbound contracts used to hand finished
// routes to community health workers and to reach households directly.
package notify

import (
	"context"
	"time"

	"github.com/uzazi-health/chwplan/core/model"
)

// RoutePublisher delivers a planned route to a CHW's device and tracks the
// acknowledgment coming back.
type RoutePublisher interface {
	// SendRoute publishes the route for the given CHW and returns the
	// delivery identifier used to correlate the acknowledgment.
	SendRoute(chwID string, route model.Route) (deliveryID string, err error)

	// WaitForAck waits for an acknowledgment of the given delivery or
	// until the timeout expires.
	WaitForAck(deliveryID string, timeout time.Duration) (bool, error)
}

// SMSSender sends a short text message and returns the provider's
// message identifier.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (sid string, err error)
}

// VoiceCaller places an automated voice call that reads a message aloud
// and returns the provider's call identifier.
type VoiceCaller interface {
	PlaceCall(ctx context.Context, to, message string) (sid string, err error)
}
