package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds parameters for the device simulator.
type Config struct {
	Broker      string
	Count       int
	IDs         string
	AckLatency  time.Duration
	DropRate    float64
	ReportDelay time.Duration
	Verbose     bool
}

// Validate rejects parameter combinations the simulator cannot run with.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return errors.New("broker is required")
	}
	if c.Count <= 0 && c.IDs == "" {
		return errors.New("count or ids must name at least one device")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return errors.New("drop-rate must be within [0,1]")
	}
	return nil
}

// DeviceIDs expands the configuration into the list of simulated workers.
func (c *Config) DeviceIDs() []string {
	if c.IDs != "" {
		parts := strings.Split(c.IDs, ",")
		ids := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				ids = append(ids, p)
			}
		}
		return ids
	}
	ids := make([]string, c.Count)
	for i := range ids {
		ids[i] = fmt.Sprintf("chw%d", i+1)
	}
	return ids
}
