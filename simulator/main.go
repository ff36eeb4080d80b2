// Command simulator emulates a fleet of companion devices so a planner
// instance can be exercised without phones in the field: each device
// subscribes to its route topic, acknowledges deliveries and reports
// visits back.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strat := RandomAck{Delay: cfg.AckLatency, DropRate: cfg.DropRate}
	runDevices(ctx, cfg, strat)
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.IntVar(&cfg.Count, "count", 1, "number of devices, named chw1..chwN")
	flag.StringVar(&cfg.IDs, "ids", "", "comma separated worker ids, overrides -count")
	flag.DurationVar(&cfg.AckLatency, "ack-latency", 0, "ack latency")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "ack drop rate")
	flag.DurationVar(&cfg.ReportDelay, "report-delay", time.Second, "delay between visit reports")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()
	return cfg
}

func runDevices(ctx context.Context, cfg Config, strat AckStrategy) {
	var wg sync.WaitGroup
	for _, id := range cfg.DeviceIDs() {
		d := NewSimulatedDevice(id, cfg.Broker, strat)
		d.ReportDelay = cfg.ReportDelay
		wg.Add(1)
		go func(d *SimulatedDevice) {
			defer wg.Done()
			if err := d.Run(ctx); err != nil {
				log.Printf("%s: %v", d.ID, err)
			}
		}(d)
	}
	wg.Wait()
}
