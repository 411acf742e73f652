package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/medifleet/dispatch/core/metrics"
	"github.com/medifleet/dispatch/infra/logger"
)

// InfluxSink writes dispatch outcomes to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordOutcomes writes the per-delivery outcomes as line protocol events.
func (s *InfluxSink) RecordOutcomes(records []coremetrics.OutcomeRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("dispatch_outcome").
			AddTag("cycle_id", r.CycleID).
			AddTag("delivery_id", r.DeliveryID).
			AddTag("outcome", r.Outcome).
			AddTag("priority", r.Priority).
			AddTag("component", "dispatch_orchestrator").
			AddField("score", r.Score).
			AddField("drone_id", r.DroneID).
			AddField("hub_id", r.HubID).
			AddField("reason", r.Reason).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordCycle writes one point per dispatch cycle.
func (s *InfluxSink) RecordCycle(stats coremetrics.CycleStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch_cycle").
		AddTag("cycle_id", stats.CycleID).
		AddField("assigned", stats.Assigned).
		AddField("failed", stats.Failed).
		AddField("skipped", stats.Skipped).
		AddField("errors", stats.Errors).
		AddField("queue_size", stats.QueueSize).
		AddField("duration_ms", stats.Duration.Milliseconds()).
		SetTime(stats.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAlerts writes the number of SLA breaches found by one scan.
func (s *InfluxSink) RecordAlerts(count int, at time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("sla_alerts").
		AddField("count", count).
		SetTime(at)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
