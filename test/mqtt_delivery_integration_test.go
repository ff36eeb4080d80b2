package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/uzazi-health/chwplan/config"
	"github.com/uzazi-health/chwplan/core/metrics/visitkpi"
	"github.com/uzazi-health/chwplan/core/model"
	"github.com/uzazi-health/chwplan/core/planner"
	"github.com/uzazi-health/chwplan/infra/mqtt"
	"github.com/uzazi-health/chwplan/infra/telemetry"
	"github.com/uzazi-health/chwplan/test/util"
)

// startDevice runs a minimal companion device against the broker: it
// acknowledges every route addressed to id and reports each assigned
// visit as completed.
func startDevice(t *testing.T, broker, id string) func() {
	t.Helper()
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("device-" + id)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("device connect: %v", token.Error())
	}
	topic := fmt.Sprintf("chw/%s/route", id)
	handler := func(_ paho.Client, msg paho.Message) {
		var m struct {
			DeliveryID string `json:"delivery_id"`
			Route      struct {
				Sequence []string `json:"sequence"`
			} `json:"route"`
		}
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			t.Errorf("device decode: %v", err)
			return
		}
		ack, _ := json.Marshal(map[string]string{"delivery_id": m.DeliveryID})
		cli.Publish(fmt.Sprintf("chw/%s/ack", id), 0, false, ack)
		for _, mID := range m.Route.Sequence {
			if mID == model.DepotID {
				continue
			}
			report, _ := json.Marshal(map[string]any{
				"chw_id":    id,
				"mother_id": mID,
				"ts":        time.Now().UnixMilli(),
			})
			cli.Publish(fmt.Sprintf("chw/%s/report", id), 0, false, report)
		}
	}
	if token := cli.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		t.Fatalf("device subscribe: %v", token.Error())
	}
	return func() { cli.Disconnect(250) }
}

// TestMQTTDeliveryAndReporting runs the broker path end to end: route
// publish, device ack, and visit reports flowing back into the KPI store.
func TestMQTTDeliveryAndReporting(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()
	broker, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto: %v", err)
	}
	defer broker.Stop()

	stop := startDevice(t, broker.URL, "chw1")
	defer stop()

	store := visitkpi.NewMemoryStore()
	collector, err := telemetry.NewCollector(
		mqtt.Config{Broker: broker.URL, ClientID: "it-collector"},
		config.TelemetryConfig{Enabled: true, ReportTopic: "chw/+/report"},
		store,
	)
	if err != nil {
		t.Fatalf("collector: %v", err)
	}
	cctx, ccancel := context.WithCancel(ctx)
	defer ccancel()
	go collector.Start(cctx)
	// give the subscription a moment to establish
	time.Sleep(500 * time.Millisecond)

	pub, err := mqtt.NewPahoPublisher(mqtt.Config{Broker: broker.URL, ClientID: "it-planner"})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Disconnect()

	mgr := planner.NewPlanManager(pub, 10*time.Second, nil, nil, nil)
	defer func() { _ = mgr.Close() }()

	res, err := mgr.Plan(ctx, planner.PlanRequest{
		Mothers: []model.Mother{
			{ID: "m1", Location: model.Coordinates{Lat: 0.01, Lng: 0}, BleedingStatus: "heavy", TempC: 36.8, BabyFeedingOK: true, PriorityOverride: model.AutoPriority},
			{ID: "m2", Location: model.Coordinates{Lat: 0.02, Lng: 0}, BleedingStatus: "none", TempC: 36.8, BabyFeedingOK: true, PriorityOverride: model.AutoPriority},
		},
		CHWs: []model.CHW{
			{ID: "chw1", Location: model.Coordinates{Lat: 0, Lng: 0}, MaxVisitsPerDay: 4},
		},
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	st, ok := res.Acks["chw1"]
	if !ok || !st.Acknowledged {
		t.Fatalf("expected acknowledged delivery, got %+v", res.Acks)
	}

	// both visit reports should land in the KPI store
	deadline := time.Now().Add(10 * time.Second)
	for {
		recs, qerr := store.Query("chw1", time.Now().Add(-24*time.Hour), time.Now().Add(24*time.Hour))
		if qerr != nil {
			t.Fatalf("query: %v", qerr)
		}
		if len(recs) == 1 && recs[0].Completed == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("reports never aggregated: %+v", recs)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
