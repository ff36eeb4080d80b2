package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const depotID = "DEPOT"

// delivery is one decoded route assignment waiting to be worked.
type delivery struct {
	ID      string
	Mothers []string
}

// SimulatedDevice stands in for one worker's companion phone: it
// acknowledges route deliveries and reports each assigned visit as done
// after the configured delay.
type SimulatedDevice struct {
	ID          string
	Broker      string
	Strategy    AckStrategy
	ReportDelay time.Duration

	client paho.Client
	workCh chan delivery
}

// NewSimulatedDevice creates a device for the given worker ID.
func NewSimulatedDevice(id, broker string, strat AckStrategy) *SimulatedDevice {
	return &SimulatedDevice{
		ID:       id,
		Broker:   broker,
		Strategy: strat,
		workCh:   make(chan delivery, 50),
	}
}

// Run connects to the broker and handles deliveries until ctx is done.
func (d *SimulatedDevice) Run(ctx context.Context) error {
	cli, err := newMQTTClient(d.Broker, "sim-"+d.ID)
	if err != nil {
		return err
	}
	d.client = cli
	for i := 0; i < 5; i++ {
		go d.worker(ctx)
	}
	topic := fmt.Sprintf("chw/%s/route", d.ID)
	if token := cli.Subscribe(topic, 1, d.onRoute(ctx)); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}
	<-ctx.Done()
	close(d.workCh)
	cli.Disconnect(250)
	return nil
}

func newMQTTClient(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.AutoReconnect = true
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return cli, nil
}

func (d *SimulatedDevice) onRoute(ctx context.Context) func(paho.Client, paho.Message) {
	return func(_ paho.Client, msg paho.Message) {
		var m struct {
			DeliveryID string `json:"delivery_id"`
			Route      struct {
				Sequence []string `json:"sequence"`
			} `json:"route"`
		}
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("%s: decode route: %v", d.ID, err)
			return
		}
		var mothers []string
		for _, id := range m.Route.Sequence {
			if id != depotID {
				mothers = append(mothers, id)
			}
		}
		select {
		case d.workCh <- delivery{ID: m.DeliveryID, Mothers: mothers}:
		default:
			log.Printf("%s: work queue full, dropping delivery %s", d.ID, m.DeliveryID)
		}
	}
}

func (d *SimulatedDevice) worker(ctx context.Context) {
	for {
		select {
		case del, ok := <-d.workCh:
			if !ok {
				return
			}
			d.Strategy.Ack(ctx, d.client, d.ID, del.ID)
			d.reportVisits(ctx, del.Mothers)
		case <-ctx.Done():
			return
		}
	}
}

// reportVisits emits one completion report per assigned mother, spaced
// by the report delay to mimic a day of field work.
func (d *SimulatedDevice) reportVisits(ctx context.Context, mothers []string) {
	for _, mID := range mothers {
		if d.ReportDelay > 0 {
			select {
			case <-time.After(d.ReportDelay):
			case <-ctx.Done():
				return
			}
		}
		payload, err := json.Marshal(struct {
			CHWID    string `json:"chw_id"`
			MotherID string `json:"mother_id"`
			TS       int64  `json:"ts"`
		}{CHWID: d.ID, MotherID: mID, TS: time.Now().UnixMilli()})
		if err != nil {
			log.Printf("%s: marshal report: %v", d.ID, err)
			continue
		}
		token := d.client.Publish(fmt.Sprintf("chw/%s/report", d.ID), 0, false, payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("%s: report publish timeout", d.ID)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("%s: publish report: %v", d.ID, err)
		}
	}
}
