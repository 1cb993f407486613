// Package influxdb provides the optional telemetry sink for Lampnet Core.
//
// It wraps the official influxdb-client-go v2 library with Lampnet-specific
// patterns for connection management, lamp state writing, and health
// monitoring.
//
// # Purpose
//
// Every successful control or delete operation records the lamp's
// post-mutation state (power state, dim level, last sensor readings) as a
// time-series point. Operators use this history to audit lighting
// schedules and spot failing fixtures from their current draw.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteLampState("10", "gw1", "ON", 80, 312.5, 0.42)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
package influxdb
