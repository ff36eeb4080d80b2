// Package telemetry ingests the visit reports companion devices publish
// after each home visit and folds them into the per-worker KPI store.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/uzazi-health/chwplan/config"
	"github.com/uzazi-health/chwplan/core/metrics/visitkpi"
	"github.com/uzazi-health/chwplan/core/monitoring"
	"github.com/uzazi-health/chwplan/infra/logger"
	infmqtt "github.com/uzazi-health/chwplan/infra/mqtt"
)

// Collector subscribes to the report topic and aggregates completed
// visits per worker and day.
type Collector struct {
	cfg   config.TelemetryConfig
	cli   paho.Client
	store visitkpi.Store
	log   logger.Logger

	received   prometheus.Counter
	dropped    prometheus.Counter
	lastReport prometheus.Gauge
	reportLag  prometheus.Histogram
}

// NewCollector connects to the broker and prepares report ingestion.
func NewCollector(mqttCfg infmqtt.Config, cfg config.TelemetryConfig, store visitkpi.Store) (*Collector, error) {
	opts, err := infmqtt.NewClientOptions(mqttCfg)
	if err != nil {
		return nil, err
	}
	id := mqttCfg.ClientID
	if id != "" {
		id += "-telemetry"
	} else {
		id = "telemetry-" + uuid.NewString()
	}
	opts.SetClientID(id)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c := &Collector{
		cfg:        cfg,
		cli:        cli,
		store:      store,
		log:        logger.New("telemetry"),
		received:   prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_reports_received_total", Help: "Number of visit reports received"}),
		dropped:    prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_reports_dropped_total", Help: "Number of visit reports dropped for bad payload or storage failure"}),
		lastReport: prometheus.NewGauge(prometheus.GaugeOpts{Name: "telemetry_last_report_timestamp_seconds", Help: "Unix timestamp of the last visit report"}),
		reportLag:  prometheus.NewHistogram(prometheus.HistogramOpts{Name: "telemetry_report_lag_seconds", Help: "Delay between a visit and its report arriving", Buckets: prometheus.DefBuckets}),
	}
	prometheus.MustRegister(c.received, c.dropped, c.lastReport, c.reportLag)
	return c, nil
}

// Start consumes reports until ctx is done, then disconnects.
func (c *Collector) Start(ctx context.Context) {
	topic := c.cfg.ReportTopic
	if topic == "" {
		topic = "chw/+/report"
	}
	if token := c.cli.Subscribe(topic, 1, c.onReport); token.Wait() && token.Error() != nil {
		c.log.Errorf("subscribe reports: %v", token.Error())
	}
	<-ctx.Done()
	if c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}

// onReport runs on the paho client's goroutine; a panic there would
// otherwise kill the process without a trace.
func (c *Collector) onReport(_ paho.Client, msg paho.Message) {
	defer monitoring.Recover()
	ts, err := c.process(msg.Payload(), msg.Topic())
	if err != nil {
		c.dropped.Inc()
		c.log.Errorf("report rejected: %v", err)
		return
	}
	c.received.Inc()
	c.lastReport.SetToCurrentTime()
	c.reportLag.Observe(time.Since(ts).Seconds())
}

// process decodes one report and folds it into the store. It returns
// the visit time so the caller can observe the reporting lag.
func (c *Collector) process(payload []byte, topic string) (time.Time, error) {
	var msg struct {
		CHWID    string `json:"chw_id"`
		PlanID   string `json:"plan_id"`
		MotherID string `json:"mother_id"`
		TS       *int64 `json:"ts"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return time.Time{}, err
	}
	if msg.CHWID == "" {
		msg.CHWID = extractID(topic)
	}
	if msg.CHWID == "" {
		return time.Time{}, errors.New("report without worker id")
	}
	ts := time.Now()
	if msg.TS != nil {
		ts = time.UnixMilli(*msg.TS)
	}
	if c.store != nil {
		if err := c.store.Add(visitkpi.Record{CHWID: msg.CHWID, Date: ts, Completed: 1}); err != nil {
			return time.Time{}, err
		}
	}
	return ts, nil
}

// extractID pulls the worker ID out of a chw/<id>/report topic.
func extractID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
