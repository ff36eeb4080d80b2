package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const ackPublishTimeout = 5 * time.Second

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// AckStrategy decides whether and when a device acknowledges a route
// delivery.
type AckStrategy interface {
	Ack(ctx context.Context, cli paho.Client, chwID, deliveryID string)
}

// AutoAck acknowledges every delivery after an optional fixed delay.
type AutoAck struct {
	Delay time.Duration
}

func (a AutoAck) Ack(ctx context.Context, cli paho.Client, chwID, deliveryID string) {
	if !waitOrCancel(ctx, a.Delay) {
		return
	}
	publishAck(cli, chwID, deliveryID)
}

// RandomAck models flaky devices: it drops acknowledgments with the
// configured probability and delays the rest. A nil Rand falls back to
// the shared seeded source.
type RandomAck struct {
	Delay    time.Duration
	DropRate float64
	Rand     *rand.Rand
}

func (r RandomAck) Ack(ctx context.Context, cli paho.Client, chwID, deliveryID string) {
	src := r.Rand
	if src == nil {
		src = rng
	}
	if r.DropRate > 0 && src.Float64() < r.DropRate {
		return
	}
	if !waitOrCancel(ctx, r.Delay) {
		return
	}
	publishAck(cli, chwID, deliveryID)
}

// waitOrCancel sleeps for d and reports whether the caller should proceed.
func waitOrCancel(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func publishAck(cli paho.Client, chwID, deliveryID string) {
	payload, err := json.Marshal(map[string]string{"delivery_id": deliveryID})
	if err != nil {
		log.Printf("marshal ack: %v", err)
		return
	}
	topic := fmt.Sprintf("chw/%s/ack", chwID)
	token := cli.Publish(topic, 0, false, payload)
	switch {
	case !token.WaitTimeout(ackPublishTimeout):
		log.Printf("ack publish timeout for %s", chwID)
	case token.Error() != nil:
		log.Printf("publish ack error for %s: %v", chwID, token.Error())
	}
}
