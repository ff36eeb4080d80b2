package main

import (
	"context"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{Broker: "tcp://localhost:1883", Count: 2}, true},
		{"ids only", Config{Broker: "tcp://localhost:1883", IDs: "chw1"}, true},
		{"no broker", Config{Count: 1}, false},
		{"no devices", Config{Broker: "tcp://localhost:1883"}, false},
		{"bad drop rate", Config{Broker: "tcp://localhost:1883", Count: 1, DropRate: 1.5}, false},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestDeviceIDs(t *testing.T) {
	cfg := Config{Count: 3}
	got := cfg.DeviceIDs()
	want := []string{"chw1", "chw2", "chw3"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v", got)
		}
	}

	cfg = Config{Count: 3, IDs: " alpha, beta ,,gamma "}
	got = cfg.DeviceIDs()
	want = []string{"alpha", "beta", "gamma"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v", got)
		}
	}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestOnRouteQueuesDelivery(t *testing.T) {
	d := NewSimulatedDevice("chw1", "", AutoAck{})
	handler := d.onRoute(context.Background())

	payload := []byte(`{"delivery_id":"d-1","chw_id":"chw1","route":{"sequence":["DEPOT","m2","m1"]}}`)
	handler(nil, &fakeMessage{topic: "chw/chw1/route", payload: payload})

	select {
	case del := <-d.workCh:
		if del.ID != "d-1" {
			t.Fatalf("unexpected delivery %#v", del)
		}
		if len(del.Mothers) != 2 || del.Mothers[0] != "m2" || del.Mothers[1] != "m1" {
			t.Fatalf("depot marker should be stripped: %#v", del)
		}
	default:
		t.Fatal("no delivery queued")
	}

	// malformed payloads are dropped
	handler(nil, &fakeMessage{topic: "chw/chw1/route", payload: []byte("{")})
	select {
	case del := <-d.workCh:
		t.Fatalf("unexpected delivery %#v", del)
	default:
	}
}

func TestRandomAckDropsEverything(t *testing.T) {
	// drop rate 1 returns before touching the client, so nil is safe
	strat := RandomAck{DropRate: 1}
	strat.Ack(context.Background(), nil, "chw1", "d-1")
}

func TestAutoAckHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	strat := AutoAck{Delay: time.Minute}
	done := make(chan struct{})
	go func() {
		strat.Ack(ctx, nil, "chw1", "d-1")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ack did not honor cancelled context")
	}
}
