// Package util holds shared fixtures for the integration tests: a
// disposable Mosquitto broker and a Prometheus scrape poller.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MetricTimeout bounds how long tests wait for a metric to show up.
const MetricTimeout = 5 * time.Second

const (
	brokerImage  = "eclipse-mosquitto:2.0"
	brokerPort   = "1883/tcp"
	probeTimeout = 5 * time.Second
	pollEvery    = 50 * time.Millisecond
)

// Mosquitto listens on localhost only unless a config enables anonymous
// access, so the container gets a scratch config file mounted in.
const brokerConf = `listener 1883
allow_anonymous true
persistence false
`

// Broker is a throwaway MQTT broker backed by a local container.
type Broker struct {
	URL  string
	stop func()
}

// Stop terminates the container and removes its scratch config.
func (b *Broker) Stop() {
	if b.stop != nil {
		b.stop()
	}
}

// StartMosquitto runs a Mosquitto container and waits until it accepts
// MQTT connections. Callers must Stop the returned broker.
func StartMosquitto(ctx context.Context) (*Broker, error) {
	dir, err := os.MkdirTemp("", "chwplan-mosq")
	if err != nil {
		return nil, err
	}
	confPath := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(confPath, []byte(brokerConf), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        brokerImage,
			ExposedPorts: []string{brokerPort},
			WaitingFor:   wait.ForListeningPort(brokerPort),
			Files: []tc.ContainerFile{{
				HostFilePath:      confPath,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	b := &Broker{stop: func() {
		_ = cont.Terminate(context.Background())
		_ = os.RemoveAll(dir)
	}}

	host, err := cont.Host(ctx)
	if err != nil {
		b.Stop()
		return nil, err
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		b.Stop()
		return nil, err
	}
	b.URL = fmt.Sprintf("tcp://%s:%s", host, port.Port())

	if err := probeBroker(ctx, b.URL); err != nil {
		b.Stop()
		return nil, fmt.Errorf("broker not ready: %w", err)
	}
	return b, nil
}

// probeBroker retries a short-lived MQTT connection until one succeeds.
// The container port can be mapped before mosquitto finishes booting.
func probeBroker(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	opts := paho.NewClientOptions().AddBroker(url).SetClientID("chwplan-probe")
	for {
		cli := paho.NewClient(opts)
		if tok := cli.Connect(); tok.Wait() && tok.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollEvery):
		}
	}
}

// WaitForMetric polls a Prometheus endpoint until a scrape line contains
// substr, returning that line. Scrape errors are retried until the context
// expires.
func WaitForMetric(ctx context.Context, metricsURL, substr string) (string, error) {
	for {
		if line, ok := scrapeFor(ctx, metricsURL, substr); ok {
			return line, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("metric %q never appeared: %w", substr, ctx.Err())
		case <-time.After(pollEvery):
		}
	}
}

func scrapeFor(ctx context.Context, url, substr string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(body), "\n") {
		if strings.Contains(line, substr) {
			return line, true
		}
	}
	return "", false
}
