package e2e

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// metricsProbe wraps the InfluxDB v2 client with the two calls the container
// suite needs: making sure the bucket exists and counting the plan points the
// influx sink wrote.
type metricsProbe struct {
	org    string
	bucket string
	client influxdb2.Client
}

func newMetricsProbe(url, org, bucket, token string) *metricsProbe {
	return &metricsProbe{org: org, bucket: bucket, client: influxdb2.NewClient(url, token)}
}

// EnsureBucket creates the org and bucket when the container bootstrap has
// not already done so.
func (p *metricsProbe) EnsureBucket(ctx context.Context) error {
	orgs := p.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, p.org)
	if err != nil || org == nil {
		if org, err = orgs.CreateOrganizationWithName(ctx, p.org); err != nil {
			return fmt.Errorf("create org %q: %w", p.org, err)
		}
	}
	buckets := p.client.BucketsAPI()
	if found, err := buckets.FindBucketByName(ctx, p.bucket); err == nil && found != nil {
		return nil
	}
	if _, err := buckets.CreateBucketWithName(ctx, org, p.bucket); err != nil {
		return fmt.Errorf("create bucket %q: %w", p.bucket, err)
	}
	return nil
}

// CountMeasurement returns how many points of the given measurement landed in
// the bucket within the lookback window.
func (p *metricsProbe) CountMeasurement(ctx context.Context, measurement string, lookback time.Duration) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-%s) |> filter(fn: (r) => r._measurement == %q)`,
		p.bucket, lookback, measurement)
	rows, err := p.client.QueryAPI(p.org).Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

func (p *metricsProbe) Close() { p.client.Close() }
