package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// lampMeasurement is the measurement name for lamp telemetry points.
const lampMeasurement = "lamp_state"

// WriteLampState records a lamp's post-mutation state as a telemetry point.
//
// This is called after every successful control or delete operation.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - nodeID: Lamp node identifier (tag)
//   - gatewayID: Gateway the lamp is reachable through (tag)
//   - state: Lamp power state, "ON" or "OFF" (tag)
//   - dimLevel: Dim level 0-100 (field)
//   - lux: Last reported illuminance reading (field)
//   - currentA: Last reported current draw in amps (field)
//
// Example:
//
//	client.WriteLampState("10", "gw1", "ON", 80, 312.5, 0.42)
func (c *Client) WriteLampState(nodeID, gatewayID, state string, dimLevel int, lux, currentA float64) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(newLampPoint(nodeID, gatewayID, state, dimLevel, lux, currentA, time.Now()))
}

// newLampPoint builds the InfluxDB point for a lamp state sample.
func newLampPoint(nodeID, gatewayID, state string, dimLevel int, lux, currentA float64, ts time.Time) *write.Point {
	return write.NewPoint(
		lampMeasurement,
		map[string]string{
			"node_id": nodeID,
			"gw_id":   gatewayID,
			"state":   state,
		},
		map[string]interface{}{
			"dim_level": dimLevel,
			"lux":       lux,
			"current_a": currentA,
		},
		ts,
	)
}
