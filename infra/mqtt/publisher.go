package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/uzazi-health/chwplan/core/model"
	"github.com/uzazi-health/chwplan/core/notify"
)

// Publisher mirrors the core notify.RoutePublisher interface.
type Publisher = notify.RoutePublisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Routes     map[string]model.Route
	FailIDs    map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Routes:     make(map[string]model.Route),
		FailIDs:    make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// SendRoute records the route or returns an error if configured to fail.
func (m *MockPublisher) SendRoute(chwID string, route model.Route) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[chwID] {
		return "", fmt.Errorf("publish failed")
	}
	m.Routes[chwID] = route
	deliveryID := fmt.Sprintf("delivery-%s", chwID)
	m.AckResults[deliveryID] = true
	return deliveryID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockPublisher) WaitForAck(deliveryID string, timeout time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[deliveryID]
	m.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("unknown delivery")
	}
	return ok, nil
}
